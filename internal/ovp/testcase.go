package ovp

// Property is one ordered (key, value) pair attached to a Testcase. Order
// matters: it is preserved verbatim into the JUnit <system-out> block.
type Property struct {
	Key   string
	Value string
}

// Well-known property keys, always attempted in this order. Some are
// omitted from a given Testcase when the value was not yet known at the
// point the failure occurred.
const (
	PropCorrelationID       = "correlationId"
	PropMethod              = "method"
	PropPath                = "path"
	PropOperationID         = "operationId"
	PropStatusCode          = "statusCode"
	PropResponseContentType = "responseContentType"
)

// Outcome is either a pass, or a single classified failure.
type Outcome struct {
	Failed  bool
	Kind    FailureKind
	Message string
}

// Pass reports whether the outcome represents success.
func (o Outcome) Pass() bool { return !o.Failed }

// Passed constructs a passing Outcome.
func Passed() Outcome { return Outcome{} }

// Failed constructs a failing Outcome with the given kind and message. If
// message is empty, the kind's default message is used.
func Failed(kind FailureKind, message string) Outcome {
	if message == "" {
		message = kind.Message()
	}
	return Outcome{Failed: true, Kind: kind, Message: message}
}

// Testcase is one forwarded transaction's record, exactly as it will be
// rendered into the JUnit report.
type Testcase struct {
	Name           string
	ElapsedSeconds float64
	Properties     []Property
	Outcome        Outcome
}

// Set appends or overwrites key's value, preserving first-seen order.
func (t *Testcase) Set(key, value string) {
	for i := range t.Properties {
		if t.Properties[i].Key == key {
			t.Properties[i].Value = value
			return
		}
	}
	t.Properties = append(t.Properties, Property{Key: key, Value: value})
}

// Get returns the value for key and whether it was present.
func (t *Testcase) Get(key string) (string, bool) {
	for _, p := range t.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}
