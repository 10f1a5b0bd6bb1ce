package formctl

// Reduce applies one event to the state. It has no side effects; anything the
// caller must do is described by the returned Effect.
func Reduce(s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case FileChanged:
		return fileChanged(s, e), Effect{}

	case PreviewClicked:
		if e.Fields.Title == "" || e.Fields.Description == "" {
			return s, Effect{Alert: MsgPreviewMissingFields}
		}
		s.Generation++
		s.Modal = Modal{Visible: true, Loading: true}
		return s, Effect{Request: &Request{Generation: s.Generation, Body: e.Fields.Request()}}

	case PreviewSettled:
		if e.Generation != s.Generation {
			return s, Effect{}
		}
		s.Modal.Loading = false
		body := e.Result.Body
		if !e.Result.OK || body.Erro != "" {
			msg := body.Erro
			if msg == "" {
				msg = MsgPreviewFallback
			}
			s.Modal.Error = msg
			s.Modal.Content = nil
			return s, Effect{}
		}
		view := BuildPreviewView(body)
		s.Modal.Error = ""
		s.Modal.Content = &view
		return s, Effect{}

	case PreviewFailed:
		if e.Generation != s.Generation {
			return s, Effect{}
		}
		msg := "unknown error"
		if e.Err != nil {
			msg = e.Err.Error()
		}
		s.Modal.Loading = false
		s.Modal.Error = MsgPreviewFailedPrefix + msg
		s.Modal.Content = nil
		return s, Effect{}

	case CloseClicked:
		s.Modal.Visible = false
		return s, Effect{}

	case ModalClicked:
		if e.OnBackdrop {
			s.Modal.Visible = false
		}
		return s, Effect{}

	case KeyPressed:
		if e.Key == KeyEscape && s.Modal.Visible {
			s.Modal.Visible = false
		}
		return s, Effect{}

	case SubmitRequested:
		if e.Fields.Title == "" || e.Fields.Description == "" {
			return s, Effect{Alert: MsgSubmitMissingFields, PreventSubmit: true}
		}
		return s, Effect{}
	}
	return s, Effect{}
}

func fileChanged(s State, e FileChanged) State {
	if e.File == nil {
		s.StatusText = ""
		s.Sections = Sections{}
		return s
	}
	s.StatusText = MsgFileSelectedPrefix + e.File.Name
	s.Sections = Sections{Status: true, Quantity: true, SkipHeader: true, PreviewButton: true}
	return s
}
