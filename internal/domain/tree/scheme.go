package tree

import (
	"fmt"

	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/bytedance/sonic"
)

// Framing is the number of non-JSON bytes before and after the JSON body
// of a scheme file.
type Framing struct {
	Header int
	Footer int
}

// DefaultFraming matches the "#|\n$JSON\n" header and "\n|#" footer.
var DefaultFraming = Framing{Header: 9, Footer: 3}

// ParseScheme strips the framing from a scheme payload and returns its
// root component object (the "Properties" field).
func ParseScheme(text string, f Framing) (map[string]interface{}, error) {
	const op = "parse scheme"

	if len(text) < f.Header+f.Footer {
		return nil, errs.Format(op, "", fmt.Errorf("payload of %d bytes is shorter than its framing", len(text)))
	}
	body := text[f.Header : len(text)-f.Footer]

	var doc interface{}
	if err := sonic.UnmarshalString(body, &doc); err != nil {
		return nil, errs.Format(op, "", err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, errs.Format(op, "", fmt.Errorf("expected a JSON object, got %T", doc))
	}

	root, ok := obj["Properties"].(map[string]interface{})
	if !ok {
		return nil, errs.Validation(op, "", "scheme has no Properties root component")
	}
	return root, nil
}
