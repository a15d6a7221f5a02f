package upload

// State is a step of the upload flow.
type State int

const (
	Idle State = iota
	FileChosen
	RequestingURL
	Transferring
	Confirming
	Done
	Failed
)

var stateNames = [...]string{
	Idle:          "idle",
	FileChosen:    "file chosen",
	RequestingURL: "requesting upload url",
	Transferring:  "transferring",
	Confirming:    "confirming",
	Done:          "done",
	Failed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Progress milestones reported on entering each state.
const (
	progressURL       = 10
	progressTransfer  = 80
	progressConfirmed = 100
)
