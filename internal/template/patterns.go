package template

import (
	"regexp"
	"sync"
)

var compiled sync.Map // key: flag + expr

func compile(expr, flags string) (*regexp.Regexp, error) {
	key := flags + "\x00" + expr
	if re, ok := compiled.Load(key); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(flags + expr)
	if err != nil {
		return nil, err
	}
	actual, _ := compiled.LoadOrStore(key, re)
	return actual.(*regexp.Regexp), nil
}

// SearchFold compiles expr for a case-insensitive search anywhere in the input.
func SearchFold(expr string) (*regexp.Regexp, error) {
	return compile(expr, "(?i)")
}

// MatchPrefix compiles expr so that it only matches at the start of the input.
func MatchPrefix(expr string) (*regexp.Regexp, error) {
	return compile("^(?:"+expr+")", "")
}
