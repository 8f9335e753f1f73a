package httpc

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/apiscenario/internal/common"
	"github.com/loykin/apiscenario/pkg/request"
	"github.com/loykin/apiscenario/pkg/state"
	"github.com/loykin/apiscenario/pkg/value"
)

const octetStream = "application/octet-stream"

// Transport executes scenario requests with a resty client.
type Transport struct {
	client *resty.Client
	logger *common.Logger
}

// NewTransport builds a Transport from client settings.
func NewTransport(h *Httpc) *Transport {
	if h == nil {
		h = &Httpc{}
	}
	return &Transport{
		client: h.New(),
		logger: common.GetLogger().WithComponent("httpc"),
	}
}

// Client exposes the underlying resty client.
func (t *Transport) Client() *resty.Client {
	return t.client
}

// Execute sends req. Any HTTP status is a result; only connection-level
// failures are returned as errors.
func (t *Transport) Execute(ctx context.Context, req *request.Request) (*state.Result, error) {
	r := t.client.R().SetContext(ctx)

	for name, vals := range req.Headers {
		// resty writes the multipart content type together with its boundary
		if req.IsMultipart() && http.CanonicalHeaderKey(name) == "Content-Type" {
			continue
		}
		for _, v := range vals {
			r.Header.Add(name, v)
		}
	}

	switch {
	case req.IsMultipart():
		for _, p := range req.Parts {
			addPart(r, p)
		}
	case !req.Body.IsNull():
		data, err := req.Body.MarshalJSON()
		if err != nil {
			return nil, err
		}
		r.SetBody(data)
	}

	resp, err := r.Execute(string(req.Method), req.URL)
	if err != nil {
		return nil, err
	}

	res := &state.Result{
		StatusCode: resp.StatusCode(),
		Headers:    resp.Header().Clone(),
		Body:       decodeBody(resp.Body()),
	}
	t.logger.Debug("response received",
		"method", string(req.Method),
		"url", resp.Request.URL,
		"status", res.StatusCode,
		"duration", resp.Time())
	return res, nil
}

func addPart(r *resty.Request, p request.Part) {
	switch p.Kind {
	case request.PartAbsent:
		// named part, no filename, no bytes
		r.SetMultipartField(p.Field, "", "", bytes.NewReader(nil))
	case request.PartEmpty:
		r.SetMultipartField(p.Field, fileName(p), octetStream, bytes.NewReader(nil))
	default:
		r.SetMultipartField(p.Field, fileName(p), contentType(p.FileName), bytes.NewReader(p.Data))
	}
}

func fileName(p request.Part) string {
	if p.FileName != "" {
		return p.FileName
	}
	return p.Field
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return octetStream
}

// decodeBody maps a response payload onto the value model: empty is Null,
// valid JSON is decoded, anything else is kept as a String.
func decodeBody(body []byte) value.Value {
	if len(bytes.TrimSpace(body)) == 0 {
		return value.NewNull()
	}
	if v, err := value.ParseJSON(body); err == nil {
		return v
	}
	return value.NewString(string(body))
}
