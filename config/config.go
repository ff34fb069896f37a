// Package config parses the INI-like, line-oriented settings file the
// gaml command line reads. The format is intentionally small: blank
// lines are ignored, "[name]" opens a read-set section, and any line
// beginning with a lowercase letter is a key=value pair -- inside a
// section it configures that read set, outside any section it sets a
// global option. Unknown keys are silently ignored; a read set missing
// its required keys is skipped with a logged diagnostic.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultOverlap is the fixed k-mer overlap (k) between adjacent nodes
// in the assembly graph.
const DefaultOverlap = 47

// Config is the fully-resolved set of global optimizer settings plus
// every read set that parsed successfully.
type Config struct {
	// Graph is the path to the graph file (required unless
	// StartingAssembly is set without it, per the combined-builder path).
	Graph string

	// StartingAssembly is the optional path to a pre-existing assembly
	// used to seed the initial walk set.
	StartingAssembly string

	// OutputPrefix is written to as "<prefix>.fas".
	OutputPrefix string

	LongContigThreshold int
	MaxIterations       int

	ExtendP       int
	DisconnectP   int
	InterchangeP  int
	LocalP        int
	JoinByAdviceP int
	FixlenP       int

	T0 float64

	// DoPostprocess forces a single deterministic FixBigReps pass and
	// pins MaxIterations to 1. The parsed config key is "do_proprocess"
	// (sic) -- the misspelling is preserved for file compatibility even
	// though the field and behavior are correctly named.
	DoPostprocess bool

	BlasrPath  string
	BowtiePath string

	ReadSets map[string]*ReadSetConfig
}

// ReadSetConfig is one [name] section's parsed settings.
type ReadSetConfig struct {
	Name string
	Type string // "single", "paired", or "pacbio"

	Filename  string
	Filename1 string
	Filename2 string

	InsertMean float64
	InsertStd  float64

	MismatchProb   float64
	MatchProb      float64
	MinProbPerBase float64
	MinProbStart   float64
	PenaltyConst   float64
	PenaltyStep    float64
	Weight         float64
	Advice         bool
	CachePrefix    string
}

// newReadSetConfig mirrors the constants named in the spec:
// mismatch_prob=0.01 (match_prob = 1 - 4*mismatch_prob),
// min_prob_per_base=-0.7, min_prob_start=-10, penalty_constant=0,
// penalty_step=50, weight=1.
func newReadSetConfig(name string) *ReadSetConfig {
	return &ReadSetConfig{
		Name:           name,
		MismatchProb:   0.01,
		MatchProb:      1 - 4*0.01,
		MinProbPerBase: -0.7,
		MinProbStart:   -10,
		PenaltyStep:    50,
		Weight:         1,
		CachePrefix:    name,
	}
}

// New returns a Config populated with the documented defaults, prior to
// any file being loaded. Load starts from these values.
func New() *Config {
	return &Config{
		LongContigThreshold: 500,
		MaxIterations:       50000,
		ExtendP:             5,
		DisconnectP:         60,
		InterchangeP:        1,
		LocalP:              60,
		JoinByAdviceP:       25,
		FixlenP:             1,
		T0:                  0.008,
		ReadSets:            make(map[string]*ReadSetConfig),
	}
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	c := New()
	currentSection := ""

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			end := strings.Index(line, "]")
			if end < 0 {
				continue
			}
			currentSection = line[1:end]
			if _, ok := c.ReadSets[currentSection]; !ok {
				c.ReadSets[currentSection] = newReadSetConfig(currentSection)
			}
			continue
		}
		if line[0] < 'a' || line[0] > 'z' {
			continue // only lines starting with a lowercase letter are key=value
		}
		key, value, ok := parseConfigLine(line)
		if !ok {
			log.Warnf("bad line in config file, ignoring: %q", line)
			continue
		}
		if currentSection == "" {
			c.setGlobal(key, value)
		} else {
			c.ReadSets[currentSection].set(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed reading config file %s: %w", path, err)
	}

	if c.Graph == "" && c.StartingAssembly == "" {
		return nil, fmt.Errorf("missing graph in config")
	}

	c.finalizeReadSets()
	return c, nil
}

func parseConfigLine(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", false
	}
	return line[:i], line[i+1:], true
}

func (c *Config) setGlobal(key, value string) {
	switch key {
	case "graph":
		c.Graph = value
	case "starting_assembly":
		c.StartingAssembly = value
	case "output_prefix":
		c.OutputPrefix = value
	case "long_contig_threshold":
		c.LongContigThreshold = atoi(value, c.LongContigThreshold)
	case "max_iterations":
		c.MaxIterations = atoi(value, c.MaxIterations)
	case "extend_p":
		c.ExtendP = atoi(value, c.ExtendP)
	case "disconnect_p":
		c.DisconnectP = atoi(value, c.DisconnectP)
	case "interchange_p":
		c.InterchangeP = atoi(value, c.InterchangeP)
	case "local_p":
		c.LocalP = atoi(value, c.LocalP)
	case "join_by_advice_p":
		c.JoinByAdviceP = atoi(value, c.JoinByAdviceP)
	case "fixlen_p":
		c.FixlenP = atoi(value, c.FixlenP)
	case "t0":
		c.T0 = atof(value, c.T0)
	case "do_proprocess":
		c.DoPostprocess = true
		c.MaxIterations = 1
	case "blasr_path":
		c.BlasrPath = value
	case "bowtie_path":
		c.BowtiePath = value
	default:
		// unknown keys are silently ignored
	}
}

func (rs *ReadSetConfig) set(key, value string) {
	switch key {
	case "type":
		rs.Type = value
	case "filename":
		rs.Filename = value
	case "filename1":
		rs.Filename1 = value
	case "filename2":
		rs.Filename2 = value
	case "insert_mean":
		rs.InsertMean = atof(value, rs.InsertMean)
	case "insert_std":
		rs.InsertStd = atof(value, rs.InsertStd)
	case "mismatch_prob":
		rs.MismatchProb = atof(value, rs.MismatchProb)
		rs.MatchProb = 1 - 4*rs.MismatchProb
	case "min_prob_per_base":
		rs.MinProbPerBase = atof(value, rs.MinProbPerBase)
	case "min_prob_start":
		rs.MinProbStart = atof(value, rs.MinProbStart)
	case "penalty_constant":
		rs.PenaltyConst = atof(value, rs.PenaltyConst)
	case "penalty_step":
		rs.PenaltyStep = atof(value, rs.PenaltyStep)
	case "weight":
		rs.Weight = atof(value, rs.Weight)
	case "advice":
		rs.Advice = true
	case "cache_prefix":
		rs.CachePrefix = value
	default:
		// unknown keys are silently ignored
	}
}

// finalizeReadSets drops any read set missing a required key for its
// type, logging a diagnostic, per the "optional read-set error" class
// in the error handling design: these are not fatal.
func (c *Config) finalizeReadSets() {
	for name, rs := range c.ReadSets {
		if rs.Type == "" {
			log.Warnf("no type for read set %s, ignoring", name)
			delete(c.ReadSets, name)
			continue
		}
		switch rs.Type {
		case "single", "pacbio":
			if rs.Filename == "" {
				log.Warnf("missing filename for read set %s, ignoring", name)
				delete(c.ReadSets, name)
			}
		case "paired":
			if rs.Filename1 == "" {
				log.Warnf("missing filename1 for read set %s, ignoring", name)
				delete(c.ReadSets, name)
				continue
			}
			if rs.Filename2 == "" {
				log.Warnf("missing filename2 for read set %s, ignoring", name)
				delete(c.ReadSets, name)
				continue
			}
			if rs.InsertMean == 0 {
				log.Warnf("missing insert_mean for read set %s, ignoring", name)
				delete(c.ReadSets, name)
				continue
			}
			if rs.InsertStd == 0 {
				log.Warnf("missing insert_std for read set %s, ignoring", name)
				delete(c.ReadSets, name)
			}
		default:
			log.Warnf("unknown type %s for read set %s, ignoring", rs.Type, name)
			delete(c.ReadSets, name)
		}
	}
}

func atoi(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func atof(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}
