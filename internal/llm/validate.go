package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// frameMIMETypes are the image encodings every supported vision API accepts.
var frameMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// checkImages rejects attachments no provider would take, before a request
// leaves the process.
func checkImages(req Request) error {
	for _, m := range req.Messages {
		if len(m.Images) > 0 && m.Role != RoleUser {
			return &ErrUnsupportedImage{Reason: "images are only sent on user messages"}
		}
		for _, img := range m.Images {
			switch {
			case !frameMIMETypes[img.MIMEType]:
				return &ErrUnsupportedImage{MIMEType: img.MIMEType, Reason: "encoding not accepted"}
			case len(img.Data) == 0:
				return &ErrUnsupportedImage{MIMEType: img.MIMEType, Reason: "no image data"}
			}
		}
	}
	return nil
}

// checkAnswer turns a provider's raw answer to req into the content handed
// back to callers. A cut-off answer is ErrMaxTokensExceeded and a declined
// one is ErrRefused. With a schema, the answer less any markdown fence must
// be JSON the schema accepts.
func checkAnswer(req Request, content json.RawMessage, stopReason string) (json.RawMessage, error) {
	switch stopReason {
	case "max_tokens":
		return nil, &ErrMaxTokensExceeded{Content: content, Limit: req.MaxTokens}
	case "refused":
		return nil, &ErrRefused{Content: content}
	}
	if req.Schema == nil {
		return content, nil
	}

	content = stripFence(content)
	var parsed any
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("not JSON: %w", err)}
	}

	compiled, err := gestureSchemas.get(req.Schema)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("schema %q: %w", req.Schema.Name, err)}
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: err}
	}
	return content, nil
}

// stripFence removes a ```json ... ``` wrapper some models put around
// structured answers despite being asked for bare JSON.
func stripFence(raw json.RawMessage) json.RawMessage {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) || !bytes.HasSuffix(b, []byte("```")) || len(b) < 6 {
		return b
	}
	b = b[3 : len(b)-3]
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 && !bytes.ContainsAny(b[:nl], "{[") {
		b = b[nl+1:]
	}
	return bytes.TrimSpace(b)
}

// schemaSet compiles each Schema once, keyed by name.
type schemaSet struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

var gestureSchemas = &schemaSet{compiled: map[string]*jsonschema.Schema{}}

func (s *schemaSet) get(schema *Schema) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.compiled[schema.Name]; ok {
		return c, nil
	}

	// AddResource wants a decoded JSON value, not the Go map as declared.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, err
	}

	url := "schema://rpscam/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	s.compiled[schema.Name] = compiled
	return compiled, nil
}
