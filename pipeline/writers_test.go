package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/go-lang-salaries/models"
)

var sampleSummaries = []models.LanguageSummary{
	{Language: "python", VacanciesFound: 1500, AverageSalary: 180000, VacanciesProcessed: 420},
	{Language: "scala", Failed: true},
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "salaries.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write("headhunter", sampleSummaries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}
	if records[0][0] != "source" || records[0][1] != "language" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "python" || records[1][3] != "180000" || records[1][4] != "420" {
		t.Fatalf("unexpected row: %v", records[1])
	}
	if records[2][5] != "true" {
		t.Fatalf("failed flag not written: %v", records[2])
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "salaries.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write("superjob", sampleSummaries); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var decoded []map[string]any
	for scanner.Scan() {
		var line map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		decoded = append(decoded, line)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("json lines=%d, want 2", len(decoded))
	}
	if decoded[0]["source"] != "superjob" || decoded[0]["language"] != "python" {
		t.Fatalf("unexpected record: %v", decoded[0])
	}
	if decoded[0]["average_salary"] != float64(180000) {
		t.Fatalf("average_salary = %v", decoded[0]["average_salary"])
	}
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	if _, err := NewWriter("xml", filepath.Join(t.TempDir(), "x.xml")); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
