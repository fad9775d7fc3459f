package utils

import (
	"github.com/abadojack/whatlanggo"
)

var whatLangOpts = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Eng: true,
		whatlanggo.Cmn: true,
		whatlanggo.Fra: true,
		whatlanggo.Spa: true,
		whatlanggo.Deu: true,
		whatlanggo.Rus: true,
		whatlanggo.Jpn: true,
	},
}

// WhatLang returns the english name of the detected language, e.g. "English".
func WhatLang(query string) string {
	info := whatlanggo.DetectWithOptions(query, whatLangOpts)
	return info.Lang.String()
}
