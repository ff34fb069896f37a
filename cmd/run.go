package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jjtimmons/gaml/config"
	"github.com/jjtimmons/gaml/internal/align"
	"github.com/jjtimmons/gaml/internal/graph"
	"github.com/jjtimmons/gaml/internal/moves"
	"github.com/jjtimmons/gaml/internal/prob"
	"github.com/jjtimmons/gaml/internal/reads"
	"github.com/jjtimmons/gaml/internal/search"
	"github.com/jjtimmons/gaml/internal/seed"
)

// run loads the config at configPath, builds the graph, read libraries
// and starting walk set it names, and drives the annealing search to
// completion, writing the final consensus to "<output_prefix>.fas".
func run(configPath string, seedFlag int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	g, initial, err := loadGraphAndWalks(cfg)
	if err != nil {
		return err
	}

	graphFASTA := filepath.Join(os.TempDir(), fmt.Sprintf("gaml-graph-%d.fa", time.Now().UnixNano()))
	if err := g.WriteFASTA(graphFASTA); err != nil {
		return err
	}
	defer os.Remove(graphFASTA)

	libs, err := buildLibraries(cfg, g, graphFASTA)
	if err != nil {
		return err
	}

	var advice []reads.AdviceSource
	for _, l := range reads.Advice(libs) {
		if as, ok := l.(reads.AdviceSource); ok {
			advice = append(advice, as)
		}
	}

	if seedFlag == 0 {
		seedFlag = time.Now().Unix()
	}

	d := &search.Driver{
		Graph:  g,
		Calc:   prob.New(g, libs, config.DefaultOverlap),
		Advice: advice,
		Weights: search.Weights{
			ExtendP:       cfg.ExtendP,
			InterchangeP:  cfg.InterchangeP,
			LocalP:        cfg.LocalP,
			JoinByAdviceP: cfg.JoinByAdviceP,
			FixlenP:       cfg.FixlenP,
			DisconnectP:   cfg.DisconnectP,
		},
		Threshold:     cfg.LongContigThreshold,
		GapStepBound:  cfg.LongContigThreshold,
		T0:            cfg.T0,
		MaxIterations: cfg.MaxIterations,
		DoPostprocess: cfg.DoPostprocess,
		OutputPrefix:  cfg.OutputPrefix,
		Rng:           rand.New(rand.NewSource(seedFlag)),
	}

	log.WithField("seed", seedFlag).Info("starting gaml search")

	if _, err := d.Run(initial); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return nil
}

// loadGraphAndWalks resolves the three ways a run can be started: a
// graph file with a starting assembly to align against it, a graph file
// alone (one singleton walk per big-contig node), or a starting
// assembly with no graph, which builds a degenerate one-node-per-contig
// graph via the combined-builder fallback.
func loadGraphAndWalks(cfg *config.Config) (*graph.Graph, moves.WalkSet, error) {
	if cfg.Graph == "" {
		g, walks, err := seed.GraphFromAssembly(cfg.StartingAssembly)
		if err != nil {
			return nil, nil, err
		}
		return g, walks, nil
	}

	g, err := graph.Load(cfg.Graph)
	if err != nil {
		return nil, nil, err
	}

	if cfg.StartingAssembly == "" {
		return g, moves.InsertMissingBigNodes(nil, g, cfg.LongContigThreshold), nil
	}

	walks, err := seed.GetPaths(g, cfg.StartingAssembly)
	if err != nil {
		return nil, nil, err
	}
	walks = seed.ClipPaths(walks, g, cfg.LongContigThreshold)
	walks = seed.AddMissingBigNodes(walks, g, cfg.LongContigThreshold)
	return g, walks, nil
}

// buildLibraries constructs and prepares one reads.Library per
// configured read set, in gaml.cc's ReadReadSets order: ensure its BAM
// cache exists (aligning it via internal/align if blasr_path/bowtie_path
// is configured and no cache is present yet), load its alignments,
// preprocess, build its read index, and for long reads compute and
// normalize its anchor cache against the graph.
func buildLibraries(cfg *config.Config, g *graph.Graph, graphFASTA string) ([]reads.Library, error) {
	var libs []reads.Library
	for _, rs := range cfg.ReadSets {
		lib, err := buildLibrary(cfg, rs, g, graphFASTA)
		if err != nil {
			return nil, fmt.Errorf("read set %s: %w", rs.Name, err)
		}
		if lib == nil {
			continue
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

// ensureCache runs the configured aligner to populate "<cache_prefix>.bam"
// from the read set's raw input file(s) when that cache doesn't already
// exist -- a config pointing cache_prefix at a pre-built cache skips
// alignment entirely, matching the collaborator boundary in SPEC_FULL.md:
// alignment is optional tooling this module can invoke, not a step it
// always performs itself.
func ensureCache(cfg *config.Config, rs *config.ReadSetConfig, graphFASTA string) (string, error) {
	cache := rs.CachePrefix + ".bam"
	if _, err := os.Stat(cache); err == nil {
		return cache, nil
	}

	switch rs.Type {
	case "single":
		if cfg.BowtiePath == "" {
			return rs.Filename, nil
		}
		r := align.Runner{BinaryPath: cfg.BowtiePath}
		if err := r.RunBowtie2(graphFASTA, rs.Filename, "", cache); err != nil {
			return "", err
		}
	case "paired":
		if cfg.BowtiePath == "" {
			return "", nil
		}
		r := align.Runner{BinaryPath: cfg.BowtiePath}
		if err := r.RunBowtie2(graphFASTA, rs.Filename1, rs.Filename2, cache); err != nil {
			return "", err
		}
	case "pacbio":
		if cfg.BlasrPath == "" {
			return rs.Filename, nil
		}
		r := align.Runner{BinaryPath: cfg.BlasrPath}
		if err := r.RunBlasr(graphFASTA, rs.Filename, cache); err != nil {
			return "", err
		}
	}
	return cache, nil
}

func buildLibrary(cfg *config.Config, rs *config.ReadSetConfig, g *graph.Graph, graphFASTA string) (reads.Library, error) {
	switch rs.Type {
	case "single":
		cache, err := ensureCache(cfg, rs, graphFASTA)
		if err != nil {
			return nil, err
		}
		lib := reads.NewSingle(rs.Name, cache, rs.MatchProb, rs.MismatchProb,
			rs.MinProbPerBase, rs.MinProbStart, rs.PenaltyConst, rs.PenaltyStep, rs.Weight, rs.Advice)
		if err := lib.LoadAlignments(); err != nil {
			return nil, err
		}
		lib.PreprocessReads()
		lib.PrepareReadIndex()
		return lib, nil

	case "paired":
		// A single aligner invocation maps both mates into one BAM; both
		// mate slots load from the same cache file, disambiguated by the
		// read id tag loadBAMAlignments keys its records on.
		cache, err := ensureCache(cfg, rs, graphFASTA)
		if err != nil {
			return nil, err
		}
		mate1, mate2 := cache, cache
		if cache == "" {
			mate1, mate2 = rs.Filename1, rs.Filename2
		}
		lib := reads.NewPaired(rs.Name, mate1, mate2, rs.MatchProb, rs.MismatchProb,
			rs.InsertMean, rs.InsertStd, rs.MinProbPerBase, rs.MinProbStart,
			rs.PenaltyConst, rs.PenaltyStep, rs.Weight, rs.Advice)
		if err := lib.LoadAlignments(); err != nil {
			return nil, err
		}
		lib.PreprocessReads()
		lib.PrepareReadIndex()
		return lib, nil

	case "pacbio":
		cache, err := ensureCache(cfg, rs, graphFASTA)
		if err != nil {
			return nil, err
		}
		lib := reads.NewLong(rs.Name, cache, rs.MatchProb, rs.MismatchProb,
			rs.MinProbPerBase, rs.MinProbStart, rs.PenaltyConst, rs.PenaltyStep, rs.Weight, rs.Advice)
		if err := lib.LoadAlignments(); err != nil {
			return nil, err
		}
		lib.PreprocessReads()
		lib.ComputeAnchors(g)
		lib.NormalizeCache(g)
		return lib, nil

	default:
		log.Warnf("unhandled read set type %q for %s, skipping", rs.Type, rs.Name)
		return nil, nil
	}
}
