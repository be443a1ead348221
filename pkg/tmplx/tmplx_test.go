package tmplx

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeUrlQuery(t *testing.T) {
	t.Parallel()
	tmpl := `{{ encodeUrlQuery "q" .Term "limit" .Limit "max_price" .MaxPrice }}`

	t.Run("all values", func(t *testing.T) {
		buf, err := MustParse("", tmpl).Render(map[string]any{"Term": "amul cheese", "Limit": 5, "MaxPrice": "300"})
		require.NoError(t, err)
		assert.Equal(t, "limit=5&max_price=300&q=amul+cheese", strings.TrimSpace(buf.String()))
	})

	t.Run("empty values are skipped", func(t *testing.T) {
		buf, err := MustParse("", tmpl).Render(map[string]any{"Term": "milk", "Limit": 5})
		require.NoError(t, err)
		assert.Equal(t, "limit=5&q=milk", strings.TrimSpace(buf.String()))
	})
}

func TestCustomFunctions(t *testing.T) {
	t.Parallel()

	t.Run("money", func(t *testing.T) {
		buf, err := MustParse("", `{{money .price}}`).Render(map[string]any{"price": 199.5})
		require.NoError(t, err)
		assert.Equal(t, "199.50", buf.String())
	})

	t.Run("plural", func(t *testing.T) {
		tmpl := MustParse("", `{{.n}} {{plural .n "item" "items"}}`)
		assert.Equal(t, "1 item", tmpl.RenderString(map[string]any{"n": 1}, ""))
		assert.Equal(t, "3 items", tmpl.RenderString(map[string]any{"n": 3}, ""))
	})

	t.Run("join", func(t *testing.T) {
		buf, err := MustParse("", `{{join ", " .sources}}`).Render(map[string]any{"sources": []string{"amazon", "zepto"}})
		require.NoError(t, err)
		assert.Equal(t, "amazon, zepto", buf.String())
	})

	t.Run("default", func(t *testing.T) {
		tmpl := MustParse("", `{{default "the product" .name}}`)
		assert.Equal(t, "the product", tmpl.RenderString(map[string]any{"name": ""}, ""))
		assert.Equal(t, "Milk", tmpl.RenderString(map[string]any{"name": "Milk"}, ""))
	})

	t.Run("jsonGet", func(t *testing.T) {
		buf, err := MustParse("", `{{jsonGet "price.current" .raw}}`).Render(map[string]any{
			"raw": `{"price":{"current":99}}`,
		})
		require.NoError(t, err)
		assert.Equal(t, "99", buf.String())
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("custom func merged with defaults", func(t *testing.T) {
		tmpl, err := Parse("test", `{{custom}} {{quote "x"}}`,
			WithTemplateFunc("custom", func() string { return "custom" }))
		require.NoError(t, err)
		assert.Equal(t, `custom "x"`, tmpl.RenderString(nil, ""))
	})

	t.Run("validation failure", func(t *testing.T) {
		validateFn := func(buf *bytes.Buffer) error {
			if !strings.Contains(buf.String(), "cart") {
				return fmt.Errorf("expected cart in output")
			}
			return nil
		}
		_, err := Parse("test", `Added {{.name}}`, WithValidate(map[string]any{"name": "x"}, validateFn))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected cart in output")
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Parse("test", `Hello {{.name`)
		assert.ErrorIs(t, err, ErrParseTemplate)
	})

	t.Run("missing key renders zero", func(t *testing.T) {
		assert.Equal(t, "Hello ", MustParse("test", `Hello {{.name}}`).RenderString(map[string]string{}, "fallback"))
	})

	t.Run("render error falls back", func(t *testing.T) {
		tmpl := MustParse("test", `{{index .list 5}}`)
		assert.Equal(t, "fallback", tmpl.RenderString(map[string]any{"list": []int{1}}, "fallback"))
	})
}
