package arena

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/naomijub/MHTH/internal/config"
	"github.com/naomijub/MHTH/pkg/logger"
	"github.com/naomijub/MHTH/skill"
)

// Outcome sampling shape. Draws peak between even opponents and vanish
// for lopsided ones; free-for-all placements add noise on top of the
// squad latents so upsets happen there too.
const (
	drawRate  = 0.1
	perfNoise = latentSigma / 2
)

type matchMode uint8

const (
	modePair matchMode = iota
	modeTeams
	modeMulti
)

func (m matchMode) String() string {
	switch m {
	case modeTeams:
		return "teams"
	case modeMulti:
		return "free-for-all"
	default:
		return "head-to-head"
	}
}

// Arena owns one simulation run: a roster, a rating engine and the
// season schedule.
type Arena struct {
	engine   string
	roster   int
	teamSize int
	squads   int
	seasons  int
	matches  int
	seed     int64
	workers  int
	params   EngineParams
	logger   logger.Logger
}

// New builds an Arena from the default run shape and the given options.
func New(opts ...Option) (*Arena, error) {
	a := &Arena{
		engine:   config.EngineMHTH,
		roster:   defaultRosterSize,
		teamSize: defaultTeamSize,
		squads:   defaultSquads,
		seasons:  defaultSeasons,
		matches:  defaultMatchesPerSeason,
		seed:     defaultSeed,
		workers:  runtime.NumCPU(),
		params:   DefaultEngineParams(),
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("arena")
	}

	if err := a.validate(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Arena) validate() error {
	if !config.KnownEngine(a.engine) {
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidOptions, a.engine)
	}
	if a.mode() != modePair && pairOnly(a.engine) {
		return fmt.Errorf("%w: engine %q rates head-to-head only, got team size %d and %d squads",
			ErrUnsupportedMode, a.engine, a.teamSize, a.squads)
	}

	if per := a.teamSize * a.squads; a.roster < per {
		return fmt.Errorf("%w: roster of %d cannot fill one %s match of %d players",
			ErrInvalidOptions, a.roster, a.mode(), per)
	}

	return nil
}

// mode derives the match shape from the squad layout.
func (a *Arena) mode() matchMode {
	switch {
	case a.squads > 2:
		return modeMulti
	case a.teamSize > 1:
		return modeTeams
	default:
		return modePair
	}
}

// pairOnly reports whether the engine lacks team and free-for-all
// support.
func pairOnly(engine string) bool {
	switch engine {
	case config.EngineElo, config.EngineGlicko, config.EngineGlicko2:
		return true
	default:
		return false
	}
}

// Run plays every season and returns the final report. Cancelling the
// context stops the run between rounds.
func (a *Arena) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	sim, err := newSimulator(a.engine, a.roster, a.params)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(a.seed))

	roster, err := newRoster(a.roster, rng)
	if err != nil {
		return nil, err
	}

	a.logger.Info(ctx, "run starting",
		logger.String("engine", a.engine),
		logger.String("mode", a.mode().String()),
		logger.Int("roster", a.roster),
		logger.Int("seasons", a.seasons),
		logger.Int("matches_per_season", a.matches),
		logger.Int64("seed", a.seed),
		logger.Int("workers", a.workers))

	ver := newVerifier()
	tallies := make([]tally, a.roster)

	pool := newPool(a.workers)
	pool.start(ctx, sim)
	defer pool.close()

	total := 0
	for season := 1; season <= a.seasons; season++ {
		played, err := a.runSeason(ctx, sim, roster, rng, ver, tallies, pool, season)
		if err != nil {
			return nil, fmt.Errorf("season %d: %w", season, err)
		}

		total += played
		a.logger.Debug(ctx, "season finished",
			logger.Int("season", season),
			logger.Int("matches", played))
	}

	report := a.buildReport(roster, sim, tallies, total, ver.summary(), time.Since(start))
	a.logger.Info(ctx, "run finished",
		logger.Int("matches", total),
		logger.Int("invariant_checks", report.Invariants.Checks),
		logger.Int("invariant_violations", report.Invariants.Violations),
		logger.Duration("elapsed", report.Elapsed))

	return report, nil
}

// runSeason plays rounds of disjoint matches until the season's match
// budget is spent, then closes the rating period. All randomness is
// consumed here, on one goroutine, before any match is handed to the
// pool; the workers only apply results to disjoint players. That keeps
// runs with the same seed bit-for-bit identical at any worker count.
func (a *Arena) runSeason(
	ctx context.Context,
	sim simulator,
	roster []Player,
	rng *rand.Rand,
	ver *verifier,
	tallies []tally,
	pool *pool,
	season int,
) (int, error) {
	per := a.teamSize * a.squads
	mode := a.mode()

	var devBefore []float64
	var played []bool
	if sim.batched() {
		devBefore = snapshotDeviations(sim, a.roster)
		played = make([]bool, a.roster)
	}

	var sumBefore float64
	if a.engine == config.EngineElo {
		sumBefore = sumRatings(sim, a.roster)
	}

	remaining := a.matches
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("run canceled: %w", err)
		}

		order := rng.Perm(a.roster)

		limit := a.roster / per
		if limit > remaining {
			limit = remaining
		}

		jobs := make([]job, 0, limit)
		var swings []swing

		for m := 0; m < limit; m++ {
			block := order[m*per : (m+1)*per]

			switch mode {
			case modePair:
				one, two := block[0], block[1]
				pOne, pTwo, err := sim.expectedPair(one, two)
				ver.checkPairPrediction(pOne, pTwo, err)

				outcome := sampleOutcome(rng, roster[one].Latent, roster[two].Latent)
				jobs = append(jobs, job{idx: len(jobs), kind: modePair, pair: [2]int{one, two}, outcome: outcome})
				tallyPair(tallies, one, two, outcome)

				if sim.batched() {
					played[one], played[two] = true, true
				} else if outcome != skill.Draw {
					swings = append(swings, newSwing(sim, one, two, outcome))
				}
			case modeTeams:
				teamOne, teamTwo := block[:a.teamSize], block[a.teamSize:]
				pOne, pTwo, err := sim.expectedTeams(teamOne, teamTwo)
				ver.checkPairPrediction(pOne, pTwo, err)

				outcome := sampleOutcome(rng, meanLatent(roster, teamOne), meanLatent(roster, teamTwo))
				jobs = append(jobs, job{idx: len(jobs), kind: modeTeams, teams: [][]int{teamOne, teamTwo}, outcome: outcome})
				tallyTeams(tallies, teamOne, teamTwo, outcome)
			case modeMulti:
				teams := carveTeams(block, a.squads, a.teamSize)
				scores, err := sim.expectedMulti(teams)
				ver.checkFieldPrediction(scores, err)

				ranks := sampleRanks(rng, roster, teams)
				jobs = append(jobs, job{idx: len(jobs), kind: modeMulti, teams: teams, ranks: ranks})
				tallyMulti(tallies, teams, ranks)
			}
		}

		if err := pool.run(jobs); err != nil {
			return 0, err
		}

		for _, s := range swings {
			ver.checkMonotonic(sim, s)
		}

		remaining -= len(jobs)
	}

	if err := sim.finishSeason(); err != nil {
		return 0, err
	}

	if sim.batched() {
		ver.checkDeviations(devBefore, snapshotDeviations(sim, a.roster), played, season)
	}
	if a.engine == config.EngineElo {
		ver.checkConservation(sumBefore, sumRatings(sim, a.roster), season)
	}

	return a.matches - remaining, nil
}

// carveTeams splits one shuffled block into squads of teamSize roster
// indices.
func carveTeams(block []int, squads, teamSize int) [][]int {
	teams := make([][]int, squads)
	for t := range teams {
		teams[t] = block[t*teamSize : (t+1)*teamSize]
	}

	return teams
}

// winProbability is the logistic chance that latent skill one beats
// latent skill two.
func winProbability(one, two float64) float64 {
	return 1.0 / (1.0 + math.Exp((two-one)/latentSigma))
}

// sampleOutcome draws a result from the first side's perspective.
func sampleOutcome(rng *rand.Rand, one, two float64) skill.Outcome {
	win := winProbability(one, two)
	draw := drawRate * (1.0 - math.Abs(2.0*win-1.0))

	u := rng.Float64()
	switch {
	case u < win*(1.0-draw):
		return skill.Win
	case u < win*(1.0-draw)+draw:
		return skill.Draw
	default:
		return skill.Loss
	}
}

// sampleRanks places the squads by noisy team performance, best squad
// on rank one.
func sampleRanks(rng *rand.Rand, roster []Player, teams [][]int) []skill.Rank {
	perfs := make([]float64, len(teams))
	for i, team := range teams {
		perfs[i] = meanLatent(roster, team) + perfNoise*rng.NormFloat64()
	}

	order := make([]int, len(teams))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return perfs[order[x]] > perfs[order[y]]
	})

	ranks := make([]skill.Rank, len(teams))
	for place, team := range order {
		ranks[team] = skill.Rank(place + 1)
	}

	return ranks
}

// swing captures a decided match before its result applies, to verify
// that the winner never loses rating and the loser never gains any.
type swing struct {
	winner, loser             int
	winnerBefore, loserBefore float64
}

func newSwing(sim simulator, one, two int, outcome skill.Outcome) swing {
	if outcome == skill.Win {
		return swing{winner: one, loser: two, winnerBefore: sim.rating(one), loserBefore: sim.rating(two)}
	}

	return swing{winner: two, loser: one, winnerBefore: sim.rating(two), loserBefore: sim.rating(one)}
}

func sumRatings(sim simulator, size int) float64 {
	total := 0.0
	for i := 0; i < size; i++ {
		total += sim.rating(i)
	}

	return total
}

func snapshotDeviations(sim simulator, size int) []float64 {
	devs := make([]float64, size)
	for i := range devs {
		devs[i], _ = sim.uncertainty(i)
	}

	return devs
}

// job is one match to apply. Jobs within a batch touch disjoint
// players, so they are safe to execute concurrently.
type job struct {
	idx     int
	kind    matchMode
	pair    [2]int
	teams   [][]int
	ranks   []skill.Rank
	outcome skill.Outcome
}

func executeJob(sim simulator, j job) error {
	switch j.kind {
	case modeTeams:
		return sim.playTeams(j.teams[0], j.teams[1], j.outcome)
	case modeMulti:
		return sim.playMulti(j.teams, j.ranks)
	default:
		return sim.playPair(j.pair[0], j.pair[1], j.outcome)
	}
}

// pool spreads match batches over a fixed set of workers. Errors land
// in per-job slots so the first failure in schedule order wins no
// matter which worker hit it.
type pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	errs    []error
	workers int
}

func newPool(workers int) *pool {
	return &pool{jobs: make(chan job), workers: workers}
}

func (p *pool) start(ctx context.Context, sim simulator) {
	for i := 0; i < p.workers; i++ {
		go func() {
			for j := range p.jobs {
				if err := ctx.Err(); err != nil {
					p.errs[j.idx] = err
				} else {
					p.errs[j.idx] = executeJob(sim, j)
				}
				p.wg.Done()
			}
		}()
	}
}

// run dispatches one batch and waits for it to drain.
func (p *pool) run(batch []job) error {
	p.errs = make([]error, len(batch))
	p.wg.Add(len(batch))
	for _, j := range batch {
		p.jobs <- j
	}
	p.wg.Wait()

	for _, err := range p.errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *pool) close() {
	close(p.jobs)
}
