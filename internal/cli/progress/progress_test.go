package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/stretchr/testify/assert"
)

func TestDisabledSpinnerIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	assert.Nil(t, p.s)
	assert.NotPanics(t, func() {
		p.Observer("copying")("a/b.txt")
		p.Stop()
		p.Stop()
	})
	assert.Empty(t, buf.String())
}

func TestExplicitlyDisabled(t *testing.T) {
	p := New(&bytes.Buffer{}, false)
	assert.Nil(t, p.s)
}

func TestObserverStartsOnFirstEntry(t *testing.T) {
	var buf bytes.Buffer
	p := &Spinner{s: spinner.New(spinner.CharSets[14], time.Hour, spinner.WithWriter(&buf))}
	observe := p.Observer("copying")
	assert.False(t, p.running)

	observe("a.txt")
	assert.True(t, p.running)
	assert.Equal(t, " copying a.txt", suffix(p))

	observe("b.txt")
	assert.Equal(t, " copying b.txt", suffix(p))

	p.Stop()
	assert.False(t, p.running)
}

func suffix(p *Spinner) string {
	p.s.Lock()
	defer p.s.Unlock()
	return p.s.Suffix
}
