package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Masterminds/semver/v3"
	junoUtils "github.com/NethermindEth/juno/utils"
)

type NodeType uint

const (
	Juno NodeType = iota
	Pathfinder
	Other
)

func (n NodeType) String() string {
	switch n {
	case Juno:
		return "juno"
	case Pathfinder:
		return "pathfinder"
	default:
		return "other"
	}
}

// DetectNodeType probes the provider with the vendor-specific version RPCs
// and reports which node implementation answers.
func DetectNodeType(providerURL string, logger *junoUtils.ZapLogger) NodeType {
	probes := []struct {
		method string
		node   NodeType
	}{
		{"juno_version", Juno},
		{"pathfinder_version", Pathfinder},
	}

	errs := make([]error, 0, len(probes))
	for _, probe := range probes {
		resp, err := rpcVersionRequest(providerURL, probe.method)
		if err == nil {
			if ver, verErr := semver.NewVersion(resp); verErr == nil {
				logger.Infof("connected to %s %s", probe.node, ver)

				return probe.node
			}
		}
		errs = append(errs, err)
	}

	logger.Warnw("couldn't identify connected node")
	logger.Debugw(
		"errors while probing node type",
		"juno", errs[0],
		"pathfinder", errs[1],
	)

	return Other
}

func rpcVersionRequest(providerURL, methodName string) (string, error) {
	rpcReq := fmt.Sprintf(`{"id": 1, "jsonrpc": "2.0", "method": %q}`, methodName)

	resp, err := http.Post(providerURL, "application/json", strings.NewReader(rpcReq))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var rpcResp struct {
		Result *string `json:"result,omitempty"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return "", err
	}

	if rpcResp.Result != nil {
		return *rpcResp.Result, nil
	}
	if rpcResp.Error != nil {
		return "", fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return "", fmt.Errorf("unexpected response for request %s: %s", rpcReq, body)
}
