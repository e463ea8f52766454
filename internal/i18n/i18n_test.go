// internal/i18n/i18n_test.go
package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedLocalesCoverSameKeys(t *testing.T) {
	require.NoError(t, Initialize("", "en"))

	en := instance.translations["en"]
	zh := instance.translations["zh_TW"]
	require.NotEmpty(t, en)
	for key := range en {
		_, ok := zh[key]
		assert.True(t, ok, "zh_TW is missing %s", key)
	}
}

func TestTranslateFallsBack(t *testing.T) {
	i := &I18n{translations: map[string]map[string]string{}, defaultLang: "en"}
	require.NoError(t, i.LoadTranslations(fstest.MapFS{
		"en.json":    {Data: []byte(`{"greeting":"Hello %s","only.en":"English"}`)},
		"zh_TW.json": {Data: []byte(`{"greeting":"你好 %s"}`)},
	}))

	assert.Equal(t, "你好 Jane", i.T("zh_TW", "greeting", "Jane"))
	assert.Equal(t, "English", i.T("zh_TW", "only.en"))
	assert.Equal(t, "missing.key", i.T("en", "missing.key"))
}

func TestLoadTranslationsRejectsEmptyDir(t *testing.T) {
	i := &I18n{translations: map[string]map[string]string{}, defaultLang: "en"}
	assert.Error(t, i.LoadTranslations(fstest.MapFS{}))
}
