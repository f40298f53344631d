package submission

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "autojudge/pkg/errors"
)

// ResultDir is the inbox subdirectory the judge writes result logs into.
// It is maintained by the judge and never created here.
const ResultDir = "Logs"

// ResultExt is appended to the destination name to form the result file name.
const ResultExt = ".log"

// Submission describes one source file handed to the judge.
type Submission struct {
	SourcePath    string
	User          string
	Task          string
	Ext           string
	Disambiguator int
}

// Draw returns a non-negative random integer used as the name disambiguator.
type Draw func() int

// DefaultDraw draws from [0, MaxInt32), the range the judge's naming convention was built around.
func DefaultDraw() int {
	return rand.Intn(math.MaxInt32)
}

// NewSubmission builds the submission for a source file. The task is the file
// name without extension, upper cased; the judge parses it back out of the name.
func NewSubmission(sourcePath, user string, draw Draw) (Submission, error) {
	if sourcePath == "" {
		return Submission{}, pkgerrors.New(pkgerrors.MissingSourceFile)
	}
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return Submission{}, pkgerrors.Wrapf(err, pkgerrors.InvalidArguments, "resolve source path failed: %v", err)
	}
	if draw == nil {
		draw = DefaultDraw
	}
	n := draw()
	if n < 0 {
		// -MinInt overflows back to MinInt; the mask keeps it non-negative.
		n = -n & math.MaxInt
	}

	base := filepath.Base(abs)
	ext := filepath.Ext(base)
	return Submission{
		SourcePath:    abs,
		User:          user,
		Task:          strings.ToUpper(strings.TrimSuffix(base, ext)),
		Ext:           ext,
		Disambiguator: n,
	}, nil
}

// DestinationName returns <int>[<user>][<TASK>]<ext>.
func (s Submission) DestinationName() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.Disambiguator))
	b.WriteString("[")
	b.WriteString(s.User)
	b.WriteString("][")
	b.WriteString(s.Task)
	b.WriteString("]")
	b.WriteString(s.Ext)
	return b.String()
}

// ResultPath predicts where the judge will write the result for destName.
func ResultPath(inbox, destName string) string {
	return filepath.Join(inbox, ResultDir, destName+ResultExt)
}

// String identifies the submission in log output.
func (s Submission) String() string {
	return fmt.Sprintf("%s (user=%s task=%s)", s.SourcePath, s.User, s.Task)
}
