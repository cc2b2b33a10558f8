package pool

// kind tags which of the six message envelope variants a value carries.
type kind int

const (
	kindItemMessage kind = iota
	kindAdd
	kindRemove
	kindEcho
	kindShutdown
	kindAbort
)

// envelope is the six-variant message envelope sent down a worker's inbox.
// Only one group of fields is meaningful for a given kind; the request
// fields are filled in by the sender, and the worker answers with a new
// envelope of the same kind carrying the response fields.
type envelope[Init Identified, Msg Identified] struct {
	kind kind
	ok   bool // item, add, remove and echo responses: false if the worker panicked before answering; unset on shutdown and abort responses

	msg Msg // kindItemMessage: request in, response out

	addInit   Init      // kindAdd: request
	addResult AddResult // kindAdd: response

	removeID     ID           // kindRemove: request
	removeResult RemoveResult // kindRemove: response

	echoID               ID     // kindEcho: routing key / request
	echoPayload          string // kindEcho: request and response
	echoRespondingWorker int    // kindEcho: response

	workerIdx      int            // kindShutdown, kindAbort: request; kindAbort: response
	shutdownReport ShutdownReport // kindShutdown: response
}

// AddResult is the response to an add-item request.
type AddResult struct {
	ID  ID
	Err error
}

// RemoveResult is the response to a remove-item request.
type RemoveResult struct {
	ID      ID
	Existed bool
}

// EchoRequest is routed like any other message, by ID, and answered by
// whichever worker ends up owning that id.
type EchoRequest struct {
	ID      ID
	Payload string
}

// TargetID implements Identified so EchoRequest can be routed by the same
// dispatch function as item messages.
func (e EchoRequest) TargetID() ID { return e.ID }

// EchoResponse reports which worker actually answered, so routing can be
// asserted end to end.
type EchoResponse struct {
	ID               ID
	Payload          string
	RespondingWorker int
}

// senderCouplet pairs one request envelope with the reply channel its
// response should be written to - the unit of work enqueued on a worker's
// inbox.
type senderCouplet[Init Identified, Msg Identified] struct {
	req     envelope[Init, Msg]
	replyTo chan envelope[Init, Msg]
}
