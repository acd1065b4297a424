// Package uistate holds the shared front-end state: menu, player and mascot
// flags plus the mascot's tip text, with timed effects that change it later.
package uistate

// Default tip texts.
const (
	WelcomeTip  = "欢迎来到<font color=#f6f> 蝉時雨 </font>！"
	FarewellTip = "最美不过分别时"
)

// State is a snapshot of the UI flags.
type State struct {
	DropMenu   bool   `json:"dropMenu"`
	ShowPlayer bool   `json:"showPlayer"`
	IsPlaying  bool   `json:"isPlaying"`
	ShowWaifu  bool   `json:"showWaifu"`
	Waifu      string `json:"waifu"`
	Tips       string `json:"tips"`
}

// Default returns the state a fresh process starts with.
func Default() State {
	return State{
		ShowWaifu: true,
		Waifu:     "tia",
		Tips:      WelcomeTip,
	}
}

// Patch is a partial State. Nil fields are left untouched when applied.
type Patch struct {
	DropMenu   *bool   `json:"dropMenu,omitempty"`
	ShowPlayer *bool   `json:"showPlayer,omitempty"`
	IsPlaying  *bool   `json:"isPlaying,omitempty"`
	ShowWaifu  *bool   `json:"showWaifu,omitempty"`
	Waifu      *string `json:"waifu,omitempty"`
	Tips       *string `json:"tips,omitempty"`
}

// Apply returns s with every non-nil field of p copied over it.
func (p Patch) Apply(s State) State {
	if p.DropMenu != nil {
		s.DropMenu = *p.DropMenu
	}
	if p.ShowPlayer != nil {
		s.ShowPlayer = *p.ShowPlayer
	}
	if p.IsPlaying != nil {
		s.IsPlaying = *p.IsPlaying
	}
	if p.ShowWaifu != nil {
		s.ShowWaifu = *p.ShowWaifu
	}
	if p.Waifu != nil {
		s.Waifu = *p.Waifu
	}
	if p.Tips != nil {
		s.Tips = *p.Tips
	}
	return s
}

// Bool returns a pointer to b for building patches.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s for building patches.
func String(s string) *string { return &s }
