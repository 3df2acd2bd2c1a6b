package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := New("")
	require.NoError(t, err)
	return tr
}

func TestNew_LoadsEmbeddedCatalogs(t *testing.T) {
	tr := newTestTranslator(t)

	assert.Equal(t, []string{"en_US", "zh_Hans_CN"}, tr.Supported())
	assert.Equal(t, "en_US", tr.Default())
	assert.Equal(t, "简体中文", tr.DisplayName("zh_Hans_CN"))
	assert.Equal(t, "English", tr.DisplayName("en_US"))
	assert.Equal(t, "fr_FR", tr.DisplayName("fr_FR"))
}

func TestNew_DefaultMustExist(t *testing.T) {
	_, err := New("JP")
	assert.Error(t, err)
}

func TestNew_ChineseDefaultSortsFirst(t *testing.T) {
	tr, err := New("zh_Hans_CN")
	require.NoError(t, err)
	assert.Equal(t, []string{"zh_Hans_CN", "en_US"}, tr.Supported())
	assert.Equal(t, "zh_Hans_CN", tr.Negotiate("", "", ""))
}

func TestT(t *testing.T) {
	tr := newTestTranslator(t)

	assert.Equal(t, "Login success.", tr.T("en_US", "Login success."))
	assert.Equal(t, "登录成功。", tr.T("zh_Hans_CN", "Login success."))
	assert.Equal(t, "你要做些什么？", tr.T("zh_Hans_CN", "What needs to be done?"))
	assert.Equal(t, "untranslated", tr.T("zh_Hans_CN", "untranslated"))
	assert.Equal(t, "Login success.", tr.T("JP", "Login success."))
}

func TestIsSupported(t *testing.T) {
	tr := newTestTranslator(t)
	assert.True(t, tr.IsSupported("zh_Hans_CN"))
	assert.False(t, tr.IsSupported("JP"))
	assert.False(t, tr.IsSupported(""))
}

func TestNegotiate(t *testing.T) {
	tr := newTestTranslator(t)

	tests := []struct {
		name       string
		preference string
		cookie     string
		accept     string
		want       string
	}{
		{"nothing", "", "", "", "en_US"},
		{"preference wins", "zh_Hans_CN", "en_US", "en", "zh_Hans_CN"},
		{"cookie over header", "", "zh_Hans_CN", "en-US", "zh_Hans_CN"},
		{"unsupported cookie ignored", "", "JP", "zh-CN,zh;q=0.9", "zh_Hans_CN"},
		{"accept-language chinese", "", "", "zh-CN,zh;q=0.9,en;q=0.8", "zh_Hans_CN"},
		{"accept-language english", "", "", "en-GB,en;q=0.9", "en_US"},
		{"accept-language unknown", "", "", "ja-JP", "en_US"},
		{"malformed header", "", "", ";;;q=x", "en_US"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Negotiate(tt.preference, tt.cookie, tt.accept))
		})
	}
}

func TestLocaleContext(t *testing.T) {
	assert.Equal(t, DefaultLocale, LocaleFromContext(context.Background()))

	ctx := WithLocale(context.Background(), "zh_Hans_CN")
	assert.Equal(t, "zh_Hans_CN", LocaleFromContext(ctx))
}
