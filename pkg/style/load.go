package style

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// nodeSpec is the YAML fixture form of a node.
//
//	root:
//	  style: {width: 400px, overflow: auto}
//	  children:
//	    - style: {height: 100px}
//	    - text: "hello world"
//	    - image: logo.png
//	      size: [64, 32]
type nodeSpec struct {
	Key      string            `yaml:"key"`
	Style    map[string]string `yaml:"style"`
	Text     *string           `yaml:"text"`
	Image    string            `yaml:"image"`
	Size     []float64         `yaml:"size"`
	Children []nodeSpec        `yaml:"children"`
}

type documentSpec struct {
	ID   string   `yaml:"id"`
	Root nodeSpec `yaml:"root"`
}

// LoadFile reads a YAML document fixture from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML document fixture.
func Load(r io.Reader) (*Document, error) {
	var spec documentSpec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	id := uuid.Nil
	if spec.ID != "" {
		parsed, err := uuid.Parse(spec.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid document id %q: %w", spec.ID, err)
		}
		id = parsed
	}

	root, err := spec.Root.build("root")
	if err != nil {
		return nil, err
	}
	return NewDocument(id, root)
}

func (s nodeSpec) build(path string) (*Node, error) {
	st := Default()
	// Sorted so shorthands apply before longhands sharing a prefix
	// ("margin" < "margin-top").
	props := make([]string, 0, len(s.Style))
	for p := range s.Style {
		props = append(props, p)
	}
	sort.Strings(props)
	for _, p := range props {
		if err := st.Apply(p, s.Style[p]); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	var n *Node
	switch {
	case s.Text != nil:
		n = Text(*s.Text)
		n.Style.Interactive = st.Interactive
	case s.Image != "":
		if len(s.Size) != 2 {
			return nil, fmt.Errorf("%s: image %q needs size [w, h]", path, s.Image)
		}
		n = Image(st, s.Image, s.Size[0], s.Size[1])
	default:
		n = El(st)
	}
	n.Key = s.Key

	for i, c := range s.Children {
		child, err := c.build(fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
