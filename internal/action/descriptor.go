package action

// Descriptor describes one action a provider supports, as configured for binds and hints.
type Descriptor struct {
	Action  string
	Default *bool
	After   *After
	Bind    string
	Label   string
}

// IsDefault reports whether the descriptor is flagged as the default action.
func (d Descriptor) IsDefault() bool {
	return d.Default != nil && *d.Default
}

// AfterOrClose returns the configured after-action, defaulting to Close.
func (d Descriptor) AfterOrClose() After {
	if d.After == nil {
		return AfterClose
	}
	return *d.After
}

// HintLabel is the text shown next to the bind in the hint row.
func (d Descriptor) HintLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Action
}
