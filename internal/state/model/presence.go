package model

import (
	"pkg.mon.icu/kioku/internal/payload"
)

// Presence is a member's online status. It is owned by the member it is set
// on and carries no identity of its own.
type Presence struct {
	Status       string
	ActivityName string
	Desktop      string
	Mobile       string
	Web          string
}

func NewPresence(o payload.Object) *Presence {
	p := &Presence{}
	p.Status, _ = o.OptStr("status")
	if game, ok := o.OptObject("game"); ok {
		p.ActivityName, _ = game.OptStr("name")
	} else if acts, ok := o.OptList("activities"); ok && len(acts) > 0 {
		p.ActivityName, _ = acts[0].OptStr("name")
	}
	if cs, ok := o.OptObject("client_status"); ok {
		p.Desktop, _ = cs.OptStr("desktop")
		p.Mobile, _ = cs.OptStr("mobile")
		p.Web, _ = cs.OptStr("web")
	}
	return p
}

// Clone returns a value copy for diffing.
func (p *Presence) Clone() *Presence {
	if p == nil {
		return nil
	}
	d := *p
	return &d
}
