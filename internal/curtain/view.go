package curtain

// View is the render policy for one curtain state: which layer is visible
// and what it carries. It is derived on demand and never stored.
type View struct {
	State State `json:"state"`

	// Rendered is false while the component is hidden; nothing below it is
	// meaningful in that case.
	Rendered bool `json:"rendered"`

	// ShowLiveView embeds the remote session page. It is true from the
	// moment the reveal is scheduled, so the page can load behind the
	// still-closed curtain.
	ShowLiveView bool `json:"show_live_view"`

	// ShowPlaceholder fills the content area while no session URL exists
	// yet and the session has not completed.
	ShowPlaceholder bool `json:"show_placeholder"`

	// ShowCurtain keeps the curtain graphics mounted; they are only torn
	// down once the curtain is fully open.
	ShowCurtain bool `json:"show_curtain"`

	// ShowCompletion overlays the completion card with the message fields
	// below and a restart action.
	ShowCompletion bool `json:"show_completion"`

	SessionURL        string `json:"session_url,omitempty"`
	CompletionMessage string `json:"completion_message,omitempty"`
	InitialMessage    string `json:"initial_message,omitempty"`
	SessionTime       int    `json:"session_time,omitempty"`
}

// View returns the current render policy.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{State: m.state, Rendered: m.inputs.Visible}
	if !v.Rendered {
		return v
	}

	v.SessionURL = m.inputs.SessionURL
	v.SessionTime = m.inputs.SessionTime

	v.ShowCurtain = m.state != StateOpen

	if m.inputs.Completed {
		v.ShowCompletion = true
		v.CompletionMessage = m.cfg.CompletionMessage
		v.InitialMessage = m.inputs.InitialMessage
		return v
	}

	// The live view mounts as soon as a session URL exists, even while the
	// curtain is still closed, so the page is ready by the time it shows.
	v.ShowLiveView = m.inputs.SessionURL != ""
	v.ShowPlaceholder = !v.ShowLiveView
	return v
}
