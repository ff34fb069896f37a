// Package align shells out to an external short- or long-read aligner
// to produce the BAM alignment cache internal/reads loads. Alignment
// itself is out of this module's core scope (see the non-goals in
// SPEC_FULL.md) -- this package only locates and invokes the configured
// binary, the same collaborator-boundary role internal/blast.BLAST
// plays for BLAST.
package align

import (
	"fmt"
	"os/exec"
)

// Runner invokes one external aligner binary against a reference graph
// FASTA and a read file, writing a BAM file to outBAM.
type Runner struct {
	// BinaryPath is the path to (or bare name of) the aligner
	// executable, as configured by blasr_path/bowtie_path.
	BinaryPath string
}

// verify resolves BinaryPath to a runnable binary, by bare name on PATH
// or by absolute/relative path, mirroring blastExec's existence check
// but via exec.LookPath since blasr_path/bowtie_path may name either a
// PATH-resolved command or a file path.
func (r Runner) verify() (string, error) {
	resolved, err := exec.LookPath(r.BinaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to find aligner binary %q: %w", r.BinaryPath, err)
	}
	return resolved, nil
}

// RunBowtie2 aligns reads (single-end if reads2 == "") against the
// graph FASTA at graphFASTA, writing a sorted BAM to outBAM.
func (r Runner) RunBowtie2(graphFASTA, reads1, reads2, outBAM string) error {
	bin, err := r.verify()
	if err != nil {
		return err
	}
	args := []string{"-x", graphFASTA, "-S", outBAM}
	if reads2 != "" {
		args = append(args, "-1", reads1, "-2", reads2)
	} else {
		args = append(args, "-U", reads1)
	}
	return run(bin, args)
}

// RunBlasr aligns long reads at readsPath against the graph FASTA at
// graphFASTA, writing BAM output to outBAM.
func (r Runner) RunBlasr(graphFASTA, readsPath, outBAM string) error {
	bin, err := r.verify()
	if err != nil {
		return err
	}
	args := []string{readsPath, graphFASTA, "--bam", "--out", outBAM}
	return run(bin, args)
}

func run(bin string, args []string) error {
	cmd := exec.Command(bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("aligner invocation failed: %w: %s", err, out)
	}
	return nil
}
