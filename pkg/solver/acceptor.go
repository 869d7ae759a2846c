package solver

import (
	"math"
	"math/rand"

	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

// acceptor decides whether the forager may pick a candidate move
type acceptor interface {
	isAccepted(candidate, last, best score.HardSoftScore, m move) bool
	stepEnded(step int64, stepScore score.HardSoftScore, m move)
}

func newAcceptor(config Config, initial score.HardSoftScore, random *rand.Rand) acceptor {
	switch config.Acceptor {
	case LateAcceptance:
		return newLateAcceptanceAcceptor(config.LateAcceptanceSize, initial)
	case SimulatedAnnealing:
		return &simulatedAnnealingAcceptor{temperature: config.StartingTemperature, coolingRate: config.CoolingRate, random: random}
	case Tabu:
		return &tabuAcceptor{size: int64(config.TabuSize), tabuUntil: make(map[int]int64)}
	default:
		return hillClimbingAcceptor{}
	}
}

//** Hill climbing

type hillClimbingAcceptor struct{}

func (hillClimbingAcceptor) isAccepted(candidate, last, _ score.HardSoftScore, _ move) bool {
	return candidate.NotWorseThan(last)
}

func (hillClimbingAcceptor) stepEnded(int64, score.HardSoftScore, move) {}

//** Late acceptance

// lateAcceptanceAcceptor accepts a candidate not worse than the step score of size steps ago
type lateAcceptanceAcceptor struct {
	history []score.HardSoftScore
	index   int
}

func newLateAcceptanceAcceptor(size int, initial score.HardSoftScore) *lateAcceptanceAcceptor {
	history := make([]score.HardSoftScore, size)
	for i := range history {
		history[i] = initial
	}
	return &lateAcceptanceAcceptor{history: history}
}

func (acceptor *lateAcceptanceAcceptor) isAccepted(candidate, last, _ score.HardSoftScore, _ move) bool {
	return candidate.NotWorseThan(last) || candidate.NotWorseThan(acceptor.history[acceptor.index])
}

func (acceptor *lateAcceptanceAcceptor) stepEnded(_ int64, stepScore score.HardSoftScore, _ move) {
	acceptor.history[acceptor.index] = stepScore
	acceptor.index = (acceptor.index + 1) % len(acceptor.history)
}

//** Simulated annealing

// Levels are weighted so a single hard (or init) point always outweighs any soft difference
// the temperature can realistically bridge
const (
	initWeight = 1e6
	hardWeight = 1e3
	softWeight = 1
)

type simulatedAnnealingAcceptor struct {
	temperature float64
	coolingRate float64
	random      *rand.Rand
}

func (acceptor *simulatedAnnealingAcceptor) isAccepted(candidate, last, _ score.HardSoftScore, _ move) bool {
	if candidate.NotWorseThan(last) {
		return true
	}
	if acceptor.temperature <= 0 {
		return false
	}
	difference := last.Sub(candidate)
	delta := float64(difference.Init)*initWeight + float64(difference.Hard)*hardWeight + float64(difference.Soft)*softWeight
	return acceptor.random.Float64() < math.Exp(-delta/acceptor.temperature)
}

func (acceptor *simulatedAnnealingAcceptor) stepEnded(int64, score.HardSoftScore, move) {
	acceptor.temperature *= acceptor.coolingRate
}

//** Tabu

// tabuAcceptor forbids moving a lesson again for size steps, unless the move reaches a new best
type tabuAcceptor struct {
	size      int64
	step      int64
	tabuUntil map[int]int64
}

func (acceptor *tabuAcceptor) isAccepted(candidate, _, best score.HardSoftScore, m move) bool {
	if candidate.BetterThan(best) {
		return true
	}
	for _, lesson := range m.planningLessons() {
		if until, ok := acceptor.tabuUntil[lesson]; ok && until > acceptor.step {
			return false
		}
	}
	return true
}

func (acceptor *tabuAcceptor) stepEnded(step int64, _ score.HardSoftScore, m move) {
	acceptor.step = step
	if m == nil {
		return
	}
	for _, lesson := range m.planningLessons() {
		acceptor.tabuUntil[lesson] = step + acceptor.size
	}
}
