package network

// Phase is the position of a connection in the protocol.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseConnectionRequested
	PhaseUkeyInit
	PhaseUkeyFinished
	PhasePairedKeyExchange
	PhaseAwaitingIntroductionDecision
	PhaseTransferring
	PhaseDisconnected
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseConnectionRequested:
		return "connection_requested"
	case PhaseUkeyInit:
		return "ukey_init"
	case PhaseUkeyFinished:
		return "ukey_finished"
	case PhasePairedKeyExchange:
		return "paired_key_exchange"
	case PhaseAwaitingIntroductionDecision:
		return "awaiting_introduction_decision"
	case PhaseTransferring:
		return "transferring"
	case PhaseDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
