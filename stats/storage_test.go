package stats

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewStorage(tempDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Run("IncrementStats", func(t *testing.T) {
		storage.IncrementStats(1, 2, 3, 4)
		stats := storage.GetCurrentStats()

		if stats.Comparisons != 1 {
			t.Errorf("Expected 1 comparison, got %d", stats.Comparisons)
		}
		if stats.FailedComparisons != 2 {
			t.Errorf("Expected 2 failed comparisons, got %d", stats.FailedComparisons)
		}
		if stats.Extractions != 3 {
			t.Errorf("Expected 3 extractions, got %d", stats.Extractions)
		}
		if stats.ExtractionFailures != 4 {
			t.Errorf("Expected 4 extraction failures, got %d", stats.ExtractionFailures)
		}
	})

	t.Run("Persistence", func(t *testing.T) {
		if err := storage.save(); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		storage2, err := NewStorage(tempDir)
		if err != nil {
			t.Fatalf("Failed to create second storage: %v", err)
		}
		defer storage2.Shutdown()

		stats := storage2.GetCurrentStats()
		if stats.Comparisons != 1 {
			t.Errorf("Expected 1 comparison after reload, got %d", stats.Comparisons)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		oldMonth := time.Now().AddDate(0, -2, 0).Format("2006-01")
		storage.mutex.Lock()
		storage.stats[oldMonth] = &MonthlyStats{
			Comparisons: 100,
			LastUpdated: time.Now().AddDate(0, -2, 0),
		}
		storage.mutex.Unlock()

		storage.Cleanup(1)

		if _, exists := storage.GetMonthlyStats(oldMonth); exists {
			t.Error("Old stats should have been cleaned up")
		}
		if _, exists := storage.GetMonthlyStats(getCurrentMonth()); !exists {
			t.Error("Current month should be retained")
		}
	})

	t.Run("CleanupRetainsWindow", func(t *testing.T) {
		now := time.Now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		kept := []string{first.AddDate(0, -1, 0).Format("2006-01"), first.AddDate(0, -2, 0).Format("2006-01")}
		dropped := first.AddDate(0, -3, 0).Format("2006-01")

		storage.mutex.Lock()
		for _, m := range append(kept, dropped) {
			storage.stats[m] = &MonthlyStats{Comparisons: 1}
		}
		storage.mutex.Unlock()

		storage.Cleanup(3)

		for _, m := range kept {
			if _, exists := storage.GetMonthlyStats(m); !exists {
				t.Errorf("Expected %s to be retained", m)
			}
		}
		if _, exists := storage.GetMonthlyStats(dropped); exists {
			t.Errorf("Expected %s to be cleaned up", dropped)
		}

		storage.Cleanup(1)
		if months := storage.GetAllMonths(); len(months) != 1 {
			t.Errorf("Expected only the current month after Cleanup(1), got %v", months)
		}
	})

	t.Run("AllMonthsNewestFirst", func(t *testing.T) {
		storage.mutex.Lock()
		storage.stats["2001-01"] = &MonthlyStats{}
		storage.mutex.Unlock()

		months := storage.GetAllMonths()
		if len(months) != 2 || months[0] != getCurrentMonth() || months[1] != "2001-01" {
			t.Errorf("Unexpected month order %v", months)
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		before := storage.GetCurrentStats()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					storage.IncrementStats(1, 0, 2, 0)
					storage.GetCurrentStats()
				}
			}()
		}
		wg.Wait()

		stats := storage.GetCurrentStats()
		if got := stats.Comparisons - before.Comparisons; got != 1000 {
			t.Errorf("Expected 1000 new comparisons, got %d", got)
		}
		if got := stats.Extractions - before.Extractions; got != 2000 {
			t.Errorf("Expected 2000 new extractions, got %d", got)
		}
	})

	t.Run("ShutdownFlushes", func(t *testing.T) {
		if err := storage.Shutdown(); err != nil {
			t.Fatalf("Shutdown failed: %v", err)
		}
		info, err := os.Stat(filepath.Join(tempDir, "stats.json"))
		if err != nil {
			t.Fatalf("Failed to stat file: %v", err)
		}
		if info.Size() > 1024 {
			t.Errorf("File size too large: %d bytes", info.Size())
		}
		// A second shutdown must not panic on the closed channel.
		if err := storage.Shutdown(); err != nil {
			t.Errorf("Second shutdown failed: %v", err)
		}
	})
}
