package probe

import "fmt"

// GenerateLinearProbe builds a single-column probe with numContacts circular
// contacts spaced pitch micrometers apart along the y axis. Used for tests
// and CLI examples.
func GenerateLinearProbe(numContacts int, pitch float64) *Probe {
	p, err := New(2, UnitUm)
	if err != nil {
		panic(err) // static arguments, cannot fail
	}
	for i := 0; i < numContacts; i++ {
		c := Contact{
			Position:    []float64{0, float64(i) * pitch},
			Shape:       ShapeCircle,
			ShapeParams: ShapeParams{ParamRadius: 5},
		}
		if err := p.AddContact(c); err != nil {
			panic(err)
		}
	}
	return p
}

// GenerateMultiShank builds a probe with numShanks columns of
// contactsPerShank square contacts each, shanks offset along the x axis and
// shank identifiers assigned per column.
func GenerateMultiShank(numShanks, contactsPerShank int, pitch float64) *Probe {
	p, err := New(2, UnitUm)
	if err != nil {
		panic(err)
	}
	const shankSpacing = 150.0
	for s := 0; s < numShanks; s++ {
		shankID := fmt.Sprintf("%d", s)
		for i := 0; i < contactsPerShank; i++ {
			c := Contact{
				Position:    []float64{float64(s) * shankSpacing, float64(i) * pitch},
				Shape:       ShapeSquare,
				ShapeParams: ShapeParams{ParamWidth: 10},
				ShankID:     shankID,
			}
			if err := p.AddContact(c); err != nil {
				panic(err)
			}
		}
	}
	return p
}
