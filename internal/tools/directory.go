package tools

import (
	"fmt"
	"math/rand"
)

// Directory answers presence lookups for people in the office. The default
// implementation is simulated; production deployments can plug a real staff
// directory behind the same interface.
type Directory interface {
	Lookup(name string) string
}

// PersonStatuses returns every status line the simulated directory can report
// for the given name.
func PersonStatuses(name string) []string {
	return []string{
		fmt.Sprintf("%s is currently in a meeting and will be available in about an hour.", name),
		fmt.Sprintf("%s is out of the office today. Would you like to leave a message?", name),
		fmt.Sprintf("%s is currently available. Would you like me to transfer your call?", name),
		fmt.Sprintf("I don't see %s in our directory. Could you provide their department or job title?", name),
	}
}

// RandomDirectory picks a status at random on every lookup.
type RandomDirectory struct {
	rng *rand.Rand
}

// NewRandomDirectory creates a directory with the given source, or the global
// source when src is nil.
func NewRandomDirectory(src rand.Source) *RandomDirectory {
	d := &RandomDirectory{}
	if src != nil {
		d.rng = rand.New(src)
	}
	return d
}

func (d *RandomDirectory) Lookup(name string) string {
	statuses := PersonStatuses(name)
	if d.rng != nil {
		return statuses[d.rng.Intn(len(statuses))]
	}
	return statuses[rand.Intn(len(statuses))]
}
