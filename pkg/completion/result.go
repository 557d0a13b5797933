package completion

import (
	"context"
	"fmt"

	"github.com/minhyannv/assistente-go/pkg/history"
)

// Kind tags the outcome of a completion request.
type Kind int

const (
	// KindOK means Content holds the assistant reply.
	KindOK Kind = iota
	// KindTransport means the remote call itself failed.
	KindTransport
	// KindShape means the endpoint answered without a usable choice.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindTransport:
		return "transport"
	case KindShape:
		return "shape"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error text prefixes shown to the user in place of a reply.
const (
	TransportErrorPrefix = "Erro ao comunicar com o modelo: "
	ShapeErrorPrefix     = "Erro ao processar a resposta do modelo: "
)

// Result is the tagged outcome of Complete. Exactly one of Content or Cause
// is meaningful, depending on Kind.
type Result struct {
	Kind    Kind
	Content string
	Cause   error
}

// OK reports whether the result carries a real assistant reply.
func (r Result) OK() bool {
	return r.Kind == KindOK
}

// Text returns the reply content, or a descriptive error text embedding the cause.
func (r Result) Text() string {
	switch r.Kind {
	case KindOK:
		return r.Content
	case KindTransport:
		return TransportErrorPrefix + causeText(r.Cause)
	case KindShape:
		return ShapeErrorPrefix + causeText(r.Cause)
	default:
		return fmt.Sprintf("unknown completion result %s: %s", r.Kind, causeText(r.Cause))
	}
}

func causeText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Reply builds a successful Result.
func Reply(content string) Result {
	return Result{Kind: KindOK, Content: content}
}

// TransportFailure builds a Result for a failed remote call.
func TransportFailure(err error) Result {
	return Result{Kind: KindTransport, Cause: err}
}

// ShapeFailure builds a Result for a response without the expected choice.
func ShapeFailure(err error) Result {
	return Result{Kind: KindShape, Cause: err}
}

// Completer sends the full ordered history and returns the assistant reply.
// Implementations never panic or return Go errors for remote failures;
// those are reported through Result.Kind.
type Completer interface {
	Complete(ctx context.Context, messages []history.Message) Result
}
