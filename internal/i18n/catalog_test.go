package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestNewSelectsLocale(t *testing.T) {
	assert.Equal(t, language.Japanese, New("ja").Language())
	assert.Equal(t, language.English, New("en").Language())
	assert.Equal(t, language.English, New("en-US").Language())
	assert.Equal(t, language.Japanese, New("not a locale!").Language())
}

func TestTextCoversEveryKey(t *testing.T) {
	for _, locale := range []string{"ja", "en"} {
		c := New(locale)
		for key := range entries {
			text := c.Text(key)
			assert.NotEmpty(t, text, "%s/%s", locale, key)
			assert.NotEqual(t, string(key), text, "%s/%s untranslated", locale, key)
		}
	}
}

func TestEnglishText(t *testing.T) {
	c := New("en")
	assert.Equal(t, "The username or password is incorrect.", c.Text(InvalidCredentials))
	assert.Equal(t, "The requested session id does not exist.", c.Text(SessionNotFound))
}
