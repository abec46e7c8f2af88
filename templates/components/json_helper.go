package components

import (
	"encoding/json"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
)

// DataAttr encodes v as JSON escaped for use inside a double-quoted HTML
// attribute. Values that cannot be encoded become an empty object.
func DataAttr(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Error encoding data attribute")
		return "{}"
	}
	return templ.EscapeString(string(b))
}
