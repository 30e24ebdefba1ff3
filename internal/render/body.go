package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// bodyRenderers keeps a pool of glamour renderers per option set.
// A TermRenderer is not safe for concurrent Render calls, so each one is
// held by a single caller at a time.
type bodyRenderers struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool
}

var renderers = &bodyRenderers{pools: make(map[Options]*sync.Pool)}

func (b *bodyRenderers) pool(opts Options) *sync.Pool {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pools[opts]
	if !ok {
		p = &sync.Pool{}
		b.pools[opts] = p
	}
	return p
}

// render renders content with a pooled renderer, creating one on a miss
func (b *bodyRenderers) render(content string, opts Options) (string, error) {
	p := b.pool(opts)

	tr, _ := p.Get().(*glamour.TermRenderer)
	if tr == nil {
		var err error
		if tr, err = newBodyRenderer(opts); err != nil {
			return "", err
		}
	}
	defer p.Put(tr)

	return tr.Render(content)
}

func newBodyRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}

// MessageBody renders a reply body for a chat bubble. The blank lines
// glamour puts around a document are trimmed. Whitespace-only bodies and
// rendering failures return the content unchanged.
func MessageBody(content string, opts Options) string {
	if strings.TrimSpace(content) == "" {
		return content
	}
	out, err := renderers.render(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
