package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/odrive-host/odrive-go/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents        int
	EventsByLayer      map[log.Layer]int
	EventsByCategory   map[log.Category]int
	EventsByDirection  map[log.Direction]int
	RequestsByEndpoint map[uint16]int
	Sessions           map[string]*SessionStats
	Errors             int
	TimeRange          struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Serial    string
	Requests  int
	Replies   int
	TotalRTT  time.Duration
	MaxRTT    time.Duration
}

// AverageRTT returns the mean reply duration.
func (s *SessionStats) AverageRTT() time.Duration {
	if s.Replies == 0 {
		return 0
	}
	return s.TotalRTT / time.Duration(s.Replies)
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, opts FilterOptions, w io.Writer) error {
	filter, err := opts.Build()
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:      make(map[log.Layer]int),
		EventsByCategory:   make(map[log.Category]int),
		EventsByDirection:  make(map[log.Direction]int),
		RequestsByEndpoint: make(map[uint16]int),
		Sessions:           make(map[string]*SessionStats),
	}

	if err := eachEvent(reader, stats.add); err != nil {
		return err
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) error {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	sess, ok := s.Sessions[event.SessionID]
	if !ok {
		sess = &SessionStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Sessions[event.SessionID] = sess
	}
	sess.Events++
	if event.Timestamp.After(sess.LastSeen) {
		sess.LastSeen = event.Timestamp
	}
	if event.Serial != "" && sess.Serial == "" {
		sess.Serial = event.Serial
	}

	if ex := event.Exchange; ex != nil {
		switch ex.Type {
		case log.ExchangeRequest:
			sess.Requests++
			s.RequestsByEndpoint[ex.EndpointID]++
		case log.ExchangeReply:
			sess.Replies++
			if ex.Duration != nil {
				sess.TotalRTT += *ex.Duration
				if *ex.Duration > sess.MaxRTT {
					sess.MaxRTT = *ex.Duration
				}
			}
		}
	}

	if event.Error != nil {
		s.Errors++
	}
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== ODrive Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerExchange, log.LayerSession} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.RequestsByEndpoint) > 0 {
		endpoints := make([]uint16, 0, len(stats.RequestsByEndpoint))
		for ep := range stats.RequestsByEndpoint {
			endpoints = append(endpoints, ep)
		}
		sort.Slice(endpoints, func(i, j int) bool { return endpoints[i] < endpoints[j] })

		fmt.Fprintln(w, "Requests by Endpoint:")
		for _, ep := range endpoints {
			fmt.Fprintf(w, "  %-12s %d\n", fmt.Sprintf("%d:", ep), stats.RequestsByEndpoint[ep])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(s.id), s.stats.Events, duration)
			if s.stats.Serial != "" {
				fmt.Fprintf(w, "           Serial: %s\n", s.stats.Serial)
			}
			if s.stats.Requests > 0 {
				fmt.Fprintf(w, "           Exchanges: %d requests, %d replies\n", s.stats.Requests, s.stats.Replies)
			}
			if s.stats.Replies > 0 {
				fmt.Fprintf(w, "           RTT: avg %s, max %s\n",
					formatDuration(s.stats.AverageRTT()), formatDuration(s.stats.MaxRTT))
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
