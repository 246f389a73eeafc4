package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/sigdecode/internal/errors"
)

// checker is implemented by request types with required fields.
type checker interface {
	check() error
}

// bindArgs round-trips the tool arguments through JSON into T, then runs
// T's check method when it has one. Failures are INVALID_REQUEST errors.
func bindArgs[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return out, errors.NewInvalidRequest(fmt.Sprintf("marshal args: %v", err))
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	if c, ok := any(&out).(checker); ok {
		if err := c.check(); err != nil {
			return out, err
		}
	}
	return out, nil
}
