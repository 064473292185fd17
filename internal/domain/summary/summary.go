package summary

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/GriffinCanCode/unchive/internal/shared/types"
)

// MostUsedLimit caps the most-used component list
const MostUsedLimit = 8

// Count is a named tally
type Count struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Count int    `json:"count" yaml:"count" toml:"count"`
}

// Origins splits components by where their type comes from
type Origins struct {
	BuiltIn   int `json:"builtIn" yaml:"builtIn" toml:"builtIn"`
	Extension int `json:"extension" yaml:"extension" toml:"extension"`
}

// BuiltInShare returns the percentage of built-in components
func (o Origins) BuiltInShare() float64 {
	total := o.BuiltIn + o.Extension
	if total == 0 {
		return 0
	}
	return float64(o.BuiltIn) * 100 / float64(total)
}

// BlockTypes tallies blocks by category
type BlockTypes struct {
	Events     int `json:"events" yaml:"events" toml:"events"`
	Methods    int `json:"methods" yaml:"methods" toml:"methods"`
	Properties int `json:"properties" yaml:"properties" toml:"properties"`
	Variables  int `json:"variables" yaml:"variables" toml:"variables"`
	Procedures int `json:"procedures" yaml:"procedures" toml:"procedures"`
}

func (b *BlockTypes) add(o BlockTypes) {
	b.Events += o.Events
	b.Methods += o.Methods
	b.Properties += o.Properties
	b.Variables += o.Variables
	b.Procedures += o.Procedures
}

// Note is a problem found while summarizing
type Note struct {
	Subject string `json:"subject" yaml:"subject" toml:"subject"`
	Message string `json:"message" yaml:"message" toml:"message"`
}

// Summary is the statistical overview of a project
type Summary struct {
	Project         string     `json:"project" yaml:"project" toml:"project"`
	Screens         int        `json:"screens" yaml:"screens" toml:"screens"`
	Extensions      int        `json:"extensions" yaml:"extensions" toml:"extensions"`
	Blocks          int        `json:"blocks" yaml:"blocks" toml:"blocks"`
	Assets          int        `json:"assets" yaml:"assets" toml:"assets"`
	AssetBytes      int64      `json:"assetBytes" yaml:"assetBytes" toml:"assetBytes"`
	AssetSize       string     `json:"assetSize" yaml:"assetSize" toml:"assetSize"`
	Origins         Origins    `json:"origins" yaml:"origins" toml:"origins"`
	BlockTypes      BlockTypes `json:"blockTypes" yaml:"blockTypes" toml:"blockTypes"`
	BlocksPerScreen []Count    `json:"blocksPerScreen" yaml:"blocksPerScreen" toml:"blocksPerScreen"`
	AssetsByType    []Count    `json:"assetsByType" yaml:"assetsByType" toml:"assetsByType"`
	MostUsed        []Count    `json:"mostUsed" yaml:"mostUsed" toml:"mostUsed"`
	Notes           []Note     `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
}

// Generate summarizes p. Malformed block XML counts as zero blocks and
// adds a note for the screen.
func Generate(p *types.Project) *Summary {
	s := &Summary{
		Project:         p.Name,
		Screens:         len(p.Screens),
		Extensions:      len(p.Extensions),
		Assets:          len(p.Assets),
		BlocksPerScreen: make([]Count, 0, len(p.Screens)),
		AssetsByType:    []Count{},
		MostUsed:        []Count{},
	}

	var components tally
	for _, screen := range p.Screens {
		stats, err := CountBlocks(screen.Blocks)
		if err != nil {
			s.Notes = append(s.Notes, Note{Subject: screen.Name, Message: err.Error()})
		}
		s.Blocks += stats.Total
		s.BlockTypes.add(stats.Types)
		s.BlocksPerScreen = append(s.BlocksPerScreen, Count{Name: screen.Name, Count: stats.Total})

		if screen.Form == nil {
			continue
		}
		screen.Form.Walk(func(c *types.Component) bool {
			components.add(c.Type)
			if c.Origin == types.OriginExtension {
				s.Origins.Extension++
			} else {
				s.Origins.BuiltIn++
			}
			return true
		})
	}

	var assetTypes tally
	for _, a := range p.Assets {
		s.AssetBytes += a.Size
		assetTypes.add(strings.ToLower(a.Type))
	}
	s.AssetSize = FormatSize(s.AssetBytes)
	s.AssetsByType = assetTypes.counts()

	s.MostUsed = components.counts()
	slices.SortStableFunc(s.MostUsed, func(a, b Count) int { return cmp.Compare(b.Count, a.Count) })
	if len(s.MostUsed) > MostUsedLimit {
		s.MostUsed = s.MostUsed[:MostUsedLimit]
	}
	return s
}

// Line renders a one-line overview
func (s *Summary) Line() string {
	return fmt.Sprintf("%s: %d screens, %d blocks, %d extensions, %d assets (%s), %.0f%% built-in",
		s.Project, s.Screens, s.Blocks, s.Extensions, s.Assets, s.AssetSize, s.Origins.BuiltInShare())
}

// FormatSize renders a byte count with decimal units, truncating the value
func FormatSize(n int64) string {
	units := []string{"B", "kB", "MB", "GB", "TB", "PB"}
	v := float64(n)
	i := 0
	for v > 1000 && i < len(units)-1 {
		v /= 1000
		i++
	}
	return fmt.Sprintf("%d%s", int64(v), units[i])
}

// tally counts names in first-seen order
type tally struct {
	index map[string]int
	items []Count
}

func (t *tally) add(name string) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[name]; ok {
		t.items[i].Count++
		return
	}
	t.index[name] = len(t.items)
	t.items = append(t.items, Count{Name: name, Count: 1})
}

func (t *tally) counts() []Count {
	if t.items == nil {
		return []Count{}
	}
	return t.items
}
