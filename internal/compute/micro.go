package compute

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/agenthands/rotcurve/internal/core/model"
)

var (
	mwKeys  = []string{"mW_GeV", "mW", "mw"}
	mMuKeys = []string{"m_mu_pred_MeV", "mMu_MeV", "mmu"}
	meKeys  = []string{"m_e_pred_MeV", "mE_MeV", "me"}
)

// Micro fetches the auxiliary scalars. Backends without GET /micro answer
// 404, and then a one-row probe is sent to /compute instead.
func (c *HTTPClient) Micro(ctx context.Context) (*model.MicroResult, error) {
	endpoint := EndpointMicro
	data, err := c.do(ctx, http.MethodGet, EndpointMicro, nil)
	var rce *RemoteCallError
	if errors.As(err, &rce) && rce.StatusCode == http.StatusNotFound {
		c.logger.Debug("no /micro endpoint, probing /compute")
		endpoint = EndpointCompute
		data, err = c.do(ctx, http.MethodPost, EndpointCompute, microProbe)
	}
	if err != nil {
		return nil, err
	}
	return decodeMicro(endpoint, data)
}

func decodeMicro(endpoint string, body []byte) (*model.MicroResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ResponseShapeError{Endpoint: endpoint, Reason: "body is not valid JSON"}
	}
	root := gjson.ParseBytes(body)
	block := root.Get("micro")
	if !block.IsObject() {
		block = root
	}
	if !block.IsObject() {
		return nil, &ResponseShapeError{Endpoint: endpoint, Reason: "no micro object"}
	}
	return &model.MicroResult{
		MW:  firstNumber(block, mwKeys...),
		MMu: firstNumber(block, mMuKeys...),
		ME:  firstNumber(block, meKeys...),
		Raw: json.RawMessage(block.Raw),
	}, nil
}
