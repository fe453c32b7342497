package isolation

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/alexandremahdhaoui/gentask/pkg/mcputil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	errEncodingOptions    = errors.New("encoding engine options")
	errCallingEngine      = errors.New("calling engine")
	errReleasingBoundary  = errors.New("releasing isolation boundary")
	errBoundaryIsReleased = errors.New("isolation boundary is released")
)

// Boundary is a loaded engine and the isolation context it runs in. It
// implements codegen.EngineInstance.
type Boundary struct {
	dir     string
	tool    string
	session *mcp.ClientSession

	mu     sync.Mutex
	closed bool
}

var _ codegen.EngineInstance = (*Boundary)(nil)

// Dir returns the private directory of the boundary.
func (b *Boundary) Dir() string {
	return b.dir
}

// Generate calls the engine's generate tool with opts. An error reported by
// the engine is a *codegen.EngineGenerationError carrying its message.
func (b *Boundary) Generate(ctx context.Context, opts codegen.Options) (codegen.GenerateResult, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()

	if closed {
		return codegen.GenerateResult{}, &codegen.EngineGenerationError{Lang: opts.Lang, Err: errBoundaryIsReleased}
	}

	args, err := toArguments(opts)
	if err != nil {
		return codegen.GenerateResult{}, &codegen.EngineGenerationError{Lang: opts.Lang, Err: err}
	}

	res, err := b.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      b.tool,
		Arguments: args,
	})
	if err != nil {
		return codegen.GenerateResult{}, &codegen.EngineGenerationError{
			Lang: opts.Lang,
			Err:  flaterrors.Join(err, errCallingEngine),
		}
	}

	if res.IsError {
		return codegen.GenerateResult{}, &codegen.EngineGenerationError{
			Lang:    opts.Lang,
			Message: mcputil.TextOf(res),
		}
	}

	if res.StructuredContent == nil {
		return codegen.GenerateResult{OutputDir: opts.OutputDir}, nil
	}

	out, err := mcputil.DecodeStructured[codegen.GenerateResult](res)
	if err != nil {
		return codegen.GenerateResult{}, &codegen.EngineGenerationError{Lang: opts.Lang, Err: err}
	}

	return out, nil
}

// Close ends the engine session, which stops the engine process, and removes
// the boundary directory. It is safe to call more than once.
func (b *Boundary) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error

	if b.session != nil {
		if err := b.session.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := os.RemoveAll(b.dir); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}

	return flaterrors.Join(append(errs, errReleasingBoundary)...)
}

func toArguments(opts codegen.Options) (map[string]any, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, flaterrors.Join(err, errEncodingOptions)
	}

	out := make(map[string]any)
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, flaterrors.Join(err, errEncodingOptions)
	}

	return out, nil
}
