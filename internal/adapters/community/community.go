// Package community turns labelled community posts into a sentiment signal.
package community

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/aimtune/internal/domain/model"
	"github.com/okian/aimtune/internal/domain/sentiment"
)

//go:embed posts.yaml
var embeddedPosts []byte

// DefaultMaxPosts is how many posts one signal reads.
const DefaultMaxPosts = 7

const dateLayout = "2006-01-02"

// ErrInvalidFeed marks a malformed post document.
var ErrInvalidFeed = errors.New("invalid community feed")

// Post is one labelled community post.
type Post struct {
	Text  string
	Label sentiment.Label
	Date  time.Time
}

type postFile struct {
	Text  string `yaml:"text"`
	Label string `yaml:"label"`
	Date  string `yaml:"date"`
}

type modeFile struct {
	Mode  string     `yaml:"mode"`
	Posts []postFile `yaml:"posts"`
}

type gameFile struct {
	Game  string     `yaml:"game"`
	Modes []modeFile `yaml:"modes"`
}

type feedFile struct {
	Games []gameFile `yaml:"games"`
}

type modePosts struct {
	mode  string
	posts []Post
}

// Option applies a configuration option to the Feed.
type Option func(*Feed)

// WithMaxPosts caps the posts read per signal. Non-positive values are ignored.
func WithMaxPosts(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.maxPosts = n
		}
	}
}

// Feed is a static set of posts keyed by game id and mode.
type Feed struct {
	games    map[string][]modePosts
	maxPosts int
}

// Default returns the feed bundled with the binary.
func Default(opts ...Option) (*Feed, error) {
	return Parse(embeddedPosts, opts...)
}

// Parse decodes a YAML post document.
func Parse(data []byte, opts ...Option) (*Feed, error) {
	var file feedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidFeed, err)
	}

	f := &Feed{games: make(map[string][]modePosts), maxPosts: DefaultMaxPosts}
	for _, opt := range opts {
		opt(f)
	}

	for _, g := range file.Games {
		key := normalize(g.Game)
		if key == "" {
			return nil, fmt.Errorf("%w: game without id", ErrInvalidFeed)
		}
		for _, m := range g.Modes {
			mp := modePosts{mode: strings.TrimSpace(m.Mode)}
			for _, p := range m.Posts {
				post, err := p.toPost()
				if err != nil {
					return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidFeed, g.Game, m.Mode, err)
				}
				mp.posts = append(mp.posts, post)
			}
			f.games[key] = append(f.games[key], mp)
		}
	}
	return f, nil
}

func (p postFile) toPost() (Post, error) {
	label := sentiment.Label(strings.ToLower(strings.TrimSpace(p.Label)))
	if !label.Valid() {
		return Post{}, fmt.Errorf("unknown label %q", p.Label)
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(p.Date))
	if err != nil {
		return Post{}, fmt.Errorf("bad date %q: %w", p.Date, err)
	}
	return Post{Text: p.Text, Label: label, Date: date}, nil
}

// Posts returns the posts a signal for gameID and mode reads, newest first. A
// known mode selects its own posts. An empty or unknown mode pools every post
// of the game. The result holds at most the configured maximum, so older posts
// are the ones dropped.
func (f *Feed) Posts(gameID, mode string) []Post {
	modes := f.games[normalize(gameID)]

	var out []Post
	if mode = strings.TrimSpace(mode); mode != "" {
		for _, m := range modes {
			if strings.EqualFold(m.mode, mode) {
				out = append(out, m.posts...)
				break
			}
		}
	}
	if out == nil {
		for _, m := range modes {
			out = append(out, m.posts...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > f.maxPosts {
		out = out[:f.maxPosts]
	}
	return out
}

// Signal aggregates the posts for gameID and mode. The timestamp is the date
// of the newest post. No posts yields an empty signal.
func (f *Feed) Signal(ctx context.Context, gameID, mode string) (model.SentimentSignal, error) {
	if err := ctx.Err(); err != nil {
		return model.SentimentSignal{}, err
	}
	posts := f.Posts(gameID, mode)

	labels := make([]sentiment.Label, 0, len(posts))
	var newest time.Time
	for _, p := range posts {
		labels = append(labels, p.Label)
		if p.Date.After(newest) {
			newest = p.Date
		}
	}
	return sentiment.FromLabels(labels, newest), nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
