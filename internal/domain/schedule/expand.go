package schedule

import "time"

// DefaultMaxInstances は1回の展開で生成するインスタンス数の上限
// recurrence_end_date が無い定義の無限生成を止める安全弁であり、撤去してはならない
const DefaultMaxInstances = 100

// Window はインスタンス1件分の開始・終了ウィンドウを表す
type Window struct {
	Start time.Time
	End   time.Time
}

// Expand は繰り返し定義を具体的なウィンドウ列に展開する
// 純粋関数：I/Oを行わず、同じ定義に対して常に同じ列を返す
// maxInstances が0以下の場合は DefaultMaxInstances を使用する
func (e *ScheduledEvent) Expand(maxInstances int) []Window {
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}

	if !e.IsRecurring {
		return []Window{{Start: e.StartDate, End: e.EndDate}}
	}

	duration := e.Duration()
	cursor := e.StartDate
	// 終了日が開始日より前の定義は1件も生成しない
	if e.RecurrenceEndDate != nil && cursor.After(*e.RecurrenceEndDate) {
		return nil
	}
	windows := []Window{{Start: cursor, End: cursor.Add(duration)}}

	weeklyDays := e.RecurrenceType == RecurrenceWeekly && len(e.RecurrenceDays) > 0
	daySet := map[int]bool{}
	if weeklyDays {
		for _, d := range e.RecurrenceDays {
			daySet[d] = true
		}
	}

	for len(windows) < maxInstances {
		emit := true
		switch e.RecurrenceType {
		case RecurrenceDaily:
			cursor = cursor.AddDate(0, 0, e.RecurrenceInterval)
		case RecurrenceWeekly:
			if weeklyDays {
				// 1日ずつ進め、対象曜日のみ生成する
				cursor = cursor.AddDate(0, 0, 1)
				// 土曜日に達したら interval-1 週分まとめて飛ばし、複数週間隔を週単位でスキップする
				if cursor.Weekday() == time.Saturday {
					cursor = cursor.AddDate(0, 0, 7*(e.RecurrenceInterval-1))
				}
				emit = daySet[int(cursor.Weekday())]
			} else {
				cursor = cursor.AddDate(0, 0, 7*e.RecurrenceInterval)
			}
		case RecurrenceMonthly:
			// 月末の日付は AddDate の正規化に従って繰り上がる
			cursor = cursor.AddDate(0, e.RecurrenceInterval, 0)
		case RecurrenceYearly:
			cursor = cursor.AddDate(e.RecurrenceInterval, 0, 0)
		default:
			// 未知の種別はバリデーションで弾かれる前提だが、万一渡された場合は
			// カーソルが進まないため最初の1件で打ち切る
			return windows
		}

		if e.RecurrenceEndDate != nil && cursor.After(*e.RecurrenceEndDate) {
			break
		}
		if emit {
			windows = append(windows, Window{Start: cursor, End: cursor.Add(duration)})
		}
	}

	return windows
}
