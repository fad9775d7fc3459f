package ai

import "strings"

const (
	PROMPT_VAR_CONTENT = "${content}"
	PROMPT_VAR_LANG    = "${lang}"
)

const PROMPT_SUMMARY_EN = `This is my journal entry. Summarize the events of the day and what happened. Also say what kind of day it was. Do not make it too long or too short. Please answer in ${lang}. The content -> "${content}"`

const PROMPT_DESCRIBE_IMAGE_EN = `The emotions that can be interpreted by analyzing this image is how I feel. Analyze the emotions. And describe it as if I was feeling that emotion. Example: if you see a boy jumping in happiness, say "I feel like jumping in the air because of joy"`

func ReplaceVarWithLang(tpl, lang string) string {
	if lang == "" {
		lang = MODEL_BASE_LANGUAGE_EN
	}
	return strings.ReplaceAll(tpl, PROMPT_VAR_LANG, lang)
}

func BuildSummaryPrompt(content, lang string) string {
	return strings.ReplaceAll(ReplaceVarWithLang(PROMPT_SUMMARY_EN, lang), PROMPT_VAR_CONTENT, content)
}
