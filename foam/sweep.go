package foam

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"github.com/kiteworks/leimesh/polar"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Angles returns the angles from start up to but excluding stop in step
// increments.
func Angles(start, stop, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(stop-start, 0) || math.IsNaN(stop-start) {
		return nil, fmt.Errorf("invalid angle range [%g, %g) step %g", start, stop, step)
	}
	n := int(math.Ceil((stop - start) / step))
	if n < 0 {
		n = 0
	}
	angles := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		angles = append(angles, start+float64(i)*step)
	}
	return angles, nil
}

// Sweep solves a mesh over a range of angles of attack.
type Sweep struct {
	Solver Solver
	Base   string // base case directory
	Mesh   string // gmsh mesh file
	Root   string // parent directory of the angle cases
	// Velocity is the freestream speed handed to the solver.
	Velocity float64
	Angles   []float64
	// Parallel bounds the number of angles solved at once. Zero or less
	// solves one angle at a time.
	Parallel int
	// ContinueOnError keeps solving the remaining angles after a failure.
	// Otherwise the first failure cancels the sweep.
	ContinueOnError bool
	// OnRow, if set, is called once per solved angle. Calls are serialized.
	OnRow func(polar.Row) error
}

// AngleError reports a failed angle.
type AngleError struct {
	Alpha float64
	Err   error
}

func (e *AngleError) Error() string { return fmt.Sprintf("alpha %g: %v", e.Alpha, e.Err) }

func (e *AngleError) Unwrap() error { return e.Err }

// Run solves every angle and returns the rows of the solved angles sorted
// by angle. With ContinueOnError the failures are joined in the returned
// error alongside the rows that did solve.
func (s Sweep) Run(ctx context.Context) ([]polar.Row, error) {
	if len(s.Angles) == 0 {
		return nil, errors.New("no angle to solve")
	}
	if !(s.Velocity > 0) {
		return nil, fmt.Errorf("freestream velocity must be positive, got %g", s.Velocity)
	}
	log := s.Solver.log()
	limit := s.Parallel
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var (
		mu     sync.Mutex
		rows   []polar.Row
		failed []error
	)
	for _, alpha := range s.Angles {
		alpha := alpha
		g.Go(func() error {
			row, err := s.solve(gctx, alpha)
			if err == nil && s.OnRow != nil {
				mu.Lock()
				err = s.OnRow(row)
				mu.Unlock()
			}
			if err != nil {
				err = &AngleError{Alpha: alpha, Err: err}
				if !s.ContinueOnError {
					return err
				}
				log.Error("angle failed", zap.Float64("alpha", alpha), zap.Error(err))
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	polar.SortByAlpha(rows)
	log.Info("sweep finished", zap.Int("solved", len(rows)), zap.Int("failed", len(failed)))
	return rows, errors.Join(failed...)
}

func (s Sweep) solve(ctx context.Context, alpha float64) (polar.Row, error) {
	if err := ctx.Err(); err != nil {
		return polar.Row{}, err
	}
	dir := filepath.Join(s.Root, CaseDir(alpha))
	if err := Prepare(s.Base, s.Mesh, dir); err != nil {
		return polar.Row{}, err
	}
	return s.Solver.Compute(ctx, dir, alpha, s.Velocity)
}
