// Package scoring 是反馈档位与时间效率评级的唯一定义点，
// 避免客户端与任何展示层各算一套出现偏差。
package scoring

import (
	"math"

	"epic_quiz_client/internal/model"
)

// Score 对照包内权威答案计算结果。未作答一律计错，不按跳过处理；
// correct_answers 按包内题目顺序排列。
func Score(pkg *model.QuizPackage, answers map[string]model.AnswerRecord, totalTime int) model.Result {
	total := len(pkg.Questions)

	correctIDs := make([]string, 0, total)
	for _, q := range pkg.Questions {
		rec, ok := answers[q.ID]
		if ok && rec.SelectedOption == q.CorrectAnswer {
			correctIDs = append(correctIDs, q.ID)
		}
	}

	correct := len(correctIDs)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return model.Result{
		QuizID:         pkg.ID,
		EpicID:         pkg.EpicID,
		Percentage:     percentage,
		Correct:        correct,
		Incorrect:      total - correct,
		CorrectIDs:     correctIDs,
		Tier:           TierFor(percentage),
		TimeEfficiency: EfficiencyFor(answers),
		TotalTime:      totalTime,
	}
}

// TierFor 固定档位：>=90 excellent，>=70 proficient，>=50 developing
func TierFor(percentage int) model.FeedbackTier {
	switch {
	case percentage >= 90:
		return model.TierExcellent
	case percentage >= 70:
		return model.TierProficient
	case percentage >= 50:
		return model.TierDeveloping
	default:
		return model.TierNeedsReview
	}
}

// EfficiencyFor 按已作答题目的平均用时评级：<30s fast，<=60s steady
func EfficiencyFor(answers map[string]model.AnswerRecord) model.TimeEfficiency {
	if len(answers) == 0 {
		return model.EfficiencyDeliberate
	}
	sum := 0
	for _, a := range answers {
		sum += a.TimeSpent
	}
	avg := float64(sum) / float64(len(answers))
	switch {
	case avg < 30:
		return model.EfficiencyFast
	case avg <= 60:
		return model.EfficiencySteady
	default:
		return model.EfficiencyDeliberate
	}
}

// BuildSubmission 组装提交负载，作答明细按包内题目顺序输出
func BuildSubmission(pkg *model.QuizPackage, answers map[string]model.AnswerRecord, result *model.Result, deviceType, appVersion string) *model.SubmissionPayload {
	subs := make([]model.SubmissionAnswer, 0, len(answers))
	for _, q := range pkg.Questions {
		rec, ok := answers[q.ID]
		if !ok {
			continue
		}
		subs = append(subs, model.SubmissionAnswer{
			QuestionID: rec.QuestionID,
			UserAnswer: rec.SelectedOption,
			TimeSpent:  rec.TimeSpent,
		})
	}
	return &model.SubmissionPayload{
		QuizID:     pkg.ID,
		EpicID:     pkg.EpicID,
		Answers:    subs,
		TimeSpent:  result.TotalTime,
		DeviceType: deviceType,
		AppVersion: appVersion,
	}
}
