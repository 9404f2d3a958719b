package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// StartWebTransaction starts a New Relic transaction for an HTTP request and
// returns the request and writer to use in its place. Without an app, the
// request and writer are returned untouched along with a no-op end func.
func StartWebTransaction(app *newrelic.Application, name string, w http.ResponseWriter, r *http.Request) (http.ResponseWriter, *http.Request, func()) {
	if app == nil {
		return w, r, func() {}
	}

	txn := app.StartTransaction(name)
	txn.SetWebRequestHTTP(r)
	w = txn.SetWebResponse(w)

	ctx := newrelic.NewContext(r.Context(), txn)
	ctx = WithApplication(ctx, app)

	return w, r.WithContext(ctx), txn.End
}

// TraceMethodCall traces a method call with a given struct/package and method names
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	seg := txn.StartSegment(fmt.Sprintf("%s %s", structOrPackageName, methodName))

	return &MethodTracer{
		txn: txn,
		seg: seg,
	}
}

// MethodTracer collects analytics for a given method call within an existing
// trace.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// AddAttribute adds a key-value pair metadata to the method trace
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}

	t.seg.AddAttribute(key, value)
}

// AddAttributes adds a set of key-value pair metadata to the method trace
func (t *MethodTracer) AddAttributes(attributes map[string]interface{}) {
	if t == nil {
		return
	}

	for key, value := range attributes {
		t.seg.AddAttribute(key, value)
	}
}

// OnError observes an error within a method trace
func (t *MethodTracer) OnError(err error) {
	if t == nil {
		return
	}

	if err == nil {
		return
	}

	t.txn.NoticeError(err)
}

// End completes the trace for the method call.
func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	t.seg.End()
}
