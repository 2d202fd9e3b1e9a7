package models

// State is the reactive state exposed to UI-facing callers. Loading and
// LastError are only touched by the network-bound operations; synchronous
// mutations leave them as they are.
type State struct {
	Cagnotte          *Cagnotte
	Cagnottes         []Cagnotte
	Contributions     []Contribution
	UserContributions []Contribution
	Loading           bool
	LastError         string
}

// Clone deep-copies the state so readers never alias store-owned data.
func (s *State) Clone() State {
	out := State{
		Loading:   s.Loading,
		LastError: s.LastError,
	}
	if s.Cagnotte != nil {
		c := s.Cagnotte.Clone()
		out.Cagnotte = &c
	}
	out.Cagnottes = cloneCagnottes(s.Cagnottes)
	out.Contributions = append([]Contribution(nil), s.Contributions...)
	out.UserContributions = append([]Contribution(nil), s.UserContributions...)
	return out
}

func cloneCagnottes(in []Cagnotte) []Cagnotte {
	if in == nil {
		return nil
	}
	out := make([]Cagnotte, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
