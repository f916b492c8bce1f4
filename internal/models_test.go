package internal

import (
	"testing"
	"time"
)

func TestWorkSessionValidate(t *testing.T) {
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*WorkSession)
		wantErr bool
	}{
		{"valid", func(s *WorkSession) {}, false},
		{"empty id", func(s *WorkSession) { s.SessionID = "" }, true},
		{"start equals end", func(s *WorkSession) { s.EndTime = s.StartTime }, true},
		{"start after end", func(s *WorkSession) { s.EndTime = s.StartTime.Add(-time.Hour) }, true},
		{"over 24h", func(s *WorkSession) { s.EndTime = s.StartTime.Add(25 * time.Hour) }, true},
		{"work hours exceed span", func(s *WorkSession) { s.WorkHours = 9 }, true},
		{"work hours under span", func(s *WorkSession) { s.WorkHours = 3 }, false},
		{"confidence above one", func(s *WorkSession) { s.Confidence = 1.2 }, true},
		{"negative confidence", func(s *WorkSession) { s.Confidence = -0.1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MakeTestSession(start, 4*time.Hour)
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMakeSessionIDStable(t *testing.T) {
	start := time.Date(2024, 3, 11, 9, 5, 0, 0, time.UTC)

	a := MakeSessionID(start, SourceReal)
	b := MakeSessionID(start, SourceReal)
	if a != b {
		t.Errorf("MakeSessionID() not stable: %s vs %s", a, b)
	}
	if a == MakeSessionID(start, SourceSynthetic) {
		t.Error("MakeSessionID() ignores source type")
	}
	if a == MakeSessionID(start.Add(time.Minute), SourceReal) {
		t.Error("MakeSessionID() ignores start time")
	}
}

func TestClassifySessionType(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 3, 11, h, 0, 0, 0, time.UTC) }

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  SessionType
	}{
		{"morning", at(8), at(11), SessionMorning},
		{"afternoon", at(13), at(16), SessionAfternoon},
		{"evening", at(18), at(22), SessionEvening},
		{"full day by span", at(9), at(17), SessionFullDay},
		{"long evening is full day", at(12), at(20), SessionFullDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySessionType(tt.start, tt.end); got != tt.want {
				t.Errorf("ClassifySessionType(%s, %s) = %s, want %s",
					tt.start.Format("15:04"), tt.end.Format("15:04"), got, tt.want)
			}
		})
	}
}

func TestEventKindHelpers(t *testing.T) {
	open := RawEvent{Kind: EventStartup}
	if !open.IsSessionOpen() || open.IsSessionClose() {
		t.Error("startup should open a session")
	}
	sleep := RawEvent{Kind: EventSleep}
	if !sleep.IsSessionClose() || sleep.IsSessionOpen() {
		t.Error("sleep should close a session")
	}
}
