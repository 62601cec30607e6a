package conversation

type Selection string

const (
	SelectionNone   Selection = "none"
	SelectionNormal Selection = "normal"
	SelectionAI     Selection = "ai"
)

type ModalKind string

const (
	ModalNone         ModalKind = ""
	ModalForward      ModalKind = "forward"
	ModalWallpaper    ModalKind = "wallpaper"
	ModalOptions      ModalKind = "options"
	ModalImagePreview ModalKind = "image-preview"
	ModalReactions    ModalKind = "reactions"
)

// Phase is the coarse state of the view, derived from State.
type Phase string

const (
	PhaseNoThreadSelected    Phase = "no-thread-selected"
	PhaseThreadSelected      Phase = "thread-selected"
	PhaseLoading             Phase = "loading"
	PhaseComposing           Phase = "composing"
	PhaseAttachmentUploading Phase = "attachment-uploading"
	PhaseModalOpen           Phase = "modal-open"
)

// State is a snapshot of the view. Transitions are pure methods returning a
// new State; View applies them under its lock.
type State struct {
	Selection   Selection
	ThreadID    string
	Loading     bool
	ComposeText string
	ReplyToID   string
	Uploading   bool
	Modal       ModalKind
	// ModalTarget is the message a modal acts on, if any.
	ModalTarget string

	CounterpartTyping bool
	Err               error
}

func (s State) Composing() bool {
	return s.ComposeText != ""
}

func (s State) Phase() Phase {
	switch {
	case s.Modal != ModalNone:
		return PhaseModalOpen
	case s.Selection == SelectionNone:
		return PhaseNoThreadSelected
	case s.Loading:
		return PhaseLoading
	case s.Uploading:
		return PhaseAttachmentUploading
	case s.Composing():
		return PhaseComposing
	default:
		return PhaseThreadSelected
	}
}

func (s State) selectThread(threadID string, selection Selection) State {
	return State{
		Selection: selection,
		ThreadID:  threadID,
		Loading:   selection == SelectionNormal,
		Err:       s.Err,
	}
}

func (s State) clearSelection() State {
	return State{Selection: SelectionNone, Err: s.Err}
}

func (s State) loaded() State {
	s.Loading = false
	return s
}

func (s State) withComposeText(text string) State {
	s.ComposeText = text
	return s
}

func (s State) sent() State {
	s.ComposeText = ""
	s.ReplyToID = ""
	return s
}

func (s State) withUploading(uploading bool) State {
	s.Uploading = uploading
	return s
}

func (s State) openModal(kind ModalKind, target string) State {
	s.Modal = kind
	s.ModalTarget = target
	return s
}

// closeModal restores the thread state the modal was opened from.
func (s State) closeModal() State {
	s.Modal = ModalNone
	s.ModalTarget = ""
	return s
}

func (s State) withTyping(typing bool) State {
	s.CounterpartTyping = typing
	return s
}

func (s State) isOpen(threadID string) bool {
	return s.Selection == SelectionNormal && s.ThreadID == threadID
}
