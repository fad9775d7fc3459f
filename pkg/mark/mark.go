package mark

import (
	"regexp"
	"strings"

	"github.com/quka-ai/moodjournal/pkg/utils"
)

// HiddenRegexp 匹配日记中用户标记为隐私的片段: $hidden[...]
var HiddenRegexp = regexp.MustCompile(`\$hidden\[(.*?)\]`)

// Masker 在文本发送给外部模型前替换隐私片段, 并在返回结果中还原
type Masker struct {
	index map[string]string
}

func NewMasker() *Masker {
	return &Masker{
		index: make(map[string]string),
	}
}

func (m *Masker) Mask(text string) string {
	for _, match := range HiddenRegexp.FindAllStringSubmatch(text, -1) {
		placeholder := "$hidden[" + utils.RandomStr(10) + "]"
		m.index[placeholder] = match[0]
		text = strings.Replace(text, match[0], placeholder, 1)
	}
	return text
}

func (m *Masker) Unmask(text string) string {
	for placeholder, origin := range m.index {
		text = strings.ReplaceAll(text, placeholder, origin)
	}
	return text
}

func (m *Masker) Len() int {
	return len(m.index)
}

// Strip 去掉标记, 保留片段内容
func Strip(text string) string {
	return HiddenRegexp.ReplaceAllString(text, "$1")
}
