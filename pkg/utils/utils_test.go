package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenUniqID(t *testing.T) {
	SetupIDWorker(1)

	a, b := GenUniqIDStr(), GenUniqIDStr()
	assert.NotEqual(t, a, b)
}

func TestRandomStr(t *testing.T) {
	a, b := RandomStr(32), RandomStr(32)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9a-zA-Z]+$`, a)
	assert.Empty(t, RandomStr(0))
	assert.Len(t, RandomStr(1000), 1000)
}

func TestRandomByteLimit(t *testing.T) {
	// 只接受 [0, 248) 的字节, 每个字符恰好对应 4 个字节值
	assert.Equal(t, 248, randomByteLimit)
	assert.Zero(t, randomByteLimit%len(randomSeed))
}

func Test_ParseAcceptLanguage(t *testing.T) {
	res := ParseAcceptLanguage("en;q=0.7,zh-CN,zh;q=0.9")
	assert.Equal(t, "zh-CN", res[0].Tag)
	assert.Equal(t, "zh", res[1].Tag)
	assert.Equal(t, "en", res[2].Tag)
}

func TestParseDataURI(t *testing.T) {
	d := ParseDataURI("data:audio/webm;codecs=opus;base64,AAAA")
	assert.Equal(t, "audio/webm", d.MimeType)
	assert.Equal(t, "AAAA", d.Payload)

	d = ParseDataURI("AAAA")
	assert.Equal(t, "", d.MimeType)
	assert.Equal(t, "AAAA", d.Payload)
}

func TestDecodeBase64(t *testing.T) {
	raw, err := DecodeBase64("aGk=")
	assert.NoError(t, err)
	assert.Equal(t, "hi", string(raw))

	raw, err = DecodeBase64("aGk")
	assert.NoError(t, err)
	assert.Equal(t, "hi", string(raw))
}

func TestImageBytesToBase64(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	res, err := ImageBytesToBase64(png, "")
	assert.NoError(t, err)
	assert.Contains(t, res, "data:image/png;base64,")

	_, err = ImageBytesToBase64([]byte("plain text"), "")
	assert.Error(t, err)
}

func TestProcessStorageURL(t *testing.T) {
	presign := func(path string) (string, error) {
		return "https://signed.example.com" + path + "?sig=1", nil
	}

	res, err := ProcessStorageURL("https://static.example.com/assets/s3/1/avatar/a.png", "https://static.example.com", presign)
	assert.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/assets/s3/1/avatar/a.png?sig=1", res)

	res, err = ProcessStorageURL("https://other.example.com/a.png", "https://static.example.com", presign)
	assert.NoError(t, err)
	assert.Equal(t, "https://other.example.com/a.png", res)
}

func TestWhatLang(t *testing.T) {
	assert.Equal(t, "English", WhatLang("Today I went to the park with my friends and we had a lovely picnic."))
}
