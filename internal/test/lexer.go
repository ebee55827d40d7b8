package test

import (
	"math/rand"
	"strings"
)

// validTokens is a semicolon-separated alphabet of IFJ25 lexemes covering
// keywords, punctuation, line comments, regular string literals and
// decimal numeric literals, shuffled together by GetRandomTokens. Block
// comments, triple-quoted strings, hex and exponent literals are not in it.
const validTokens = "static;main;class;if;else;while;return;var;is;null;Null;Num;String;Ifj;import;(;);{;};\"this is a string\";\"this is a longer string containing a bunch of text: Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.\";\"\";+;-;*;/;=;==;!=;<;>;<=;>=;.;,;123;3.14;321;__global;//comment\n;\n"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
