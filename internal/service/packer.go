package service

import (
	"math"

	"github.com/noah-isme/course-backoffice-api/internal/models"
)

const fillPasses = 5

// homeworkStack pops from the tail and pushes rejected items back to the
// front so they meet a different reviewer on the next pass.
type homeworkStack struct {
	items []models.StudentHomework
}

func (s *homeworkStack) len() int { return len(s.items) }

func (s *homeworkStack) pop() models.StudentHomework {
	last := len(s.items) - 1
	item := s.items[last]
	s.items = s.items[:last]
	return item
}

func (s *homeworkStack) pushFront(item models.StudentHomework) {
	s.items = append([]models.StudentHomework{item}, s.items...)
}

// packHomeworks distributes homeworks over reviewers in three phases:
// minimum, premium (currently a no-op) and main. Actual on each plan is the
// main-phase capacity granted on top of the minimum items; a reviewer never
// holds more than abs_max in total. Whatever cannot be placed comes back as
// stack-overflow errors.
func packHomeworks(reviewers []models.Reviewer, homeworks []models.StudentHomework) ([]models.ReviewerPlan, []models.ErrorHomework) {
	plans := make([]models.ReviewerPlan, len(reviewers))
	for i, r := range reviewers {
		plans[i] = models.ReviewerPlan{Reviewer: r, Current: []models.StudentHomework{}}
	}
	stack := &homeworkStack{items: append([]models.StudentHomework(nil), homeworks...)}

	packMinimum(plans, stack)
	// Premium reviewers would get their share here; the tier is not sold
	// yet so the phase stays empty.
	packMain(plans, stack)

	overflow := make([]models.ErrorHomework, 0, stack.len())
	for stack.len() > 0 {
		hw := stack.pop()
		overflow = append(overflow, models.ErrorHomework{
			Homework: models.SohoHomework{
				StudentHomeworkID: hw.HomeworkID,
				StudentSohoID:     hw.StudentSohoID,
				SentToReviewAt:    hw.SentToReviewAt,
				ChatURL:           hw.SubmissionURL,
				StudentVKID:       &hw.StudentVKID,
			},
			StudentName: hw.StudentName,
			Message:     models.StackOverflow,
		})
	}
	return plans, overflow
}

// packMinimum guarantees every reviewer their configured minimum while the
// stack lasts. A minimum above abs_max is clamped: the absolute cap wins
// over a misconfigured envelope.
func packMinimum(plans []models.ReviewerPlan, stack *homeworkStack) {
	for i := range plans {
		limit := plans[i].Reviewer.Min
		if plans[i].Reviewer.AbsMax < limit {
			limit = plans[i].Reviewer.AbsMax
		}
		need := limit - len(plans[i].Current)
		for ; need > 0 && stack.len() > 0; need-- {
			plans[i].Current = append(plans[i].Current, stack.pop())
		}
	}
}

// packMain sizes each reviewer's share proportionally to their envelope and
// fills the slots in bounded passes.
func packMain(plans []models.ReviewerPlan, stack *homeworkStack) {
	if len(plans) == 0 || stack.len() == 0 {
		return
	}

	minTaken := make([]int, len(plans))
	for i := range plans {
		minTaken[i] = len(plans[i].Current)
	}

	var totalDesired, totalMax int
	for i := range plans {
		totalDesired += plans[i].Reviewer.OptimalDesired()
		totalMax += plans[i].Reviewer.OptimalMax()
	}
	if totalDesired == 0 && totalMax == 0 {
		return
	}

	n := stack.len()
	switch {
	case n < totalDesired || n < totalMax:
		assigned := 0
		for i := range plans {
			var percent float64
			if n <= totalDesired {
				percent = float64(plans[i].Reviewer.OptimalDesired()) / float64(totalDesired)
			} else {
				percent = float64(plans[i].Reviewer.OptimalMax()) / float64(totalMax)
			}
			plans[i].Actual = int(math.Floor(percent * float64(n)))
			assigned += plans[i].Actual
		}
		distributeRemainder(plans, n-assigned)
	case n == totalDesired:
		for i := range plans {
			plans[i].Actual = plans[i].Reviewer.OptimalDesired()
		}
	default:
		for i := range plans {
			plans[i].Actual = plans[i].Reviewer.OptimalMax()
		}
	}

	for pass := 0; pass < fillPasses && stack.len() > 0; pass++ {
		pending := stack.len()
		placed := false
		for item := 0; item < pending && stack.len() > 0; item++ {
			hw := stack.pop()
			slot := -1
			for i := range plans {
				mainPlaced := len(plans[i].Current) - minTaken[i]
				if mainPlaced < plans[i].Actual && len(plans[i].Current) < plans[i].Reviewer.AbsMax {
					slot = i
					break
				}
			}
			if slot == -1 {
				stack.pushFront(hw)
				continue
			}
			plans[slot].Current = append(plans[slot].Current, hw)
			placed = true
		}
		if !placed {
			break
		}
	}
}

// distributeRemainder hands out the rounding leftover one by one to
// reviewers still below their desired target.
func distributeRemainder(plans []models.ReviewerPlan, remainder int) {
	for remainder > 0 {
		granted := false
		for i := range plans {
			if remainder == 0 {
				break
			}
			if plans[i].Actual < plans[i].Reviewer.OptimalDesired() {
				plans[i].Actual++
				remainder--
				granted = true
			}
		}
		if !granted {
			return
		}
	}
}
