package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"timefill/portal"
	"timefill/timesheet"
)

func samplePlan(t *testing.T, n int) Plan {
	t.Helper()
	entries := make([]timesheet.Entry, 0, n)
	for i := 0; i < n; i++ {
		values := []string{"01/08/2024", "ABCD1001", "TUT", "1", "09:00"}
		if i == 0 {
			values = append(values, "T")
		}
		entries = append(entries, timesheet.NewEntry(values, "week.csv", i+1))
	}
	fill, err := portal.BuildFillPlan(entries, portal.DefaultFieldTable(), 2)
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	return Plan{StartDate: "01/08/2024", AddRowLocator: "#add", Fill: fill}
}

func TestPlanRows(t *testing.T) {
	t.Parallel()

	rows := PlanRows(samplePlan(t, 3))
	// start date + 1 add-row + 6 + 5 + 5 field writes
	if len(rows) != 1+1+16 {
		t.Fatalf("unexpected row count: %d", len(rows))
	}
	if rows[0][1] != "start_date" || rows[0][4] != "01/08/2024" {
		t.Fatalf("unexpected first row: %#v", rows[0])
	}
	if rows[1][1] != "add_row" || rows[1][3] != "#add" {
		t.Fatalf("expected add-row click before field writes: %#v", rows[1])
	}
	checkbox := rows[7]
	if checkbox[1] != "required_on_site" || checkbox[2] != "ensure_checked" {
		t.Fatalf("unexpected checkbox row: %#v", checkbox)
	}
	last := rows[len(rows)-1]
	if last[0] != "3" || last[1] != "start_time" || last[5] != "week.csv:3" {
		t.Fatalf("unexpected last row: %#v", last)
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.csv")
	writer, err := WriterForFormat(FormatFromPath(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := writer.Write(path, samplePlan(t, 1)); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open plan: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read plan: %v", err)
	}
	if len(rows) != 1+1+6 {
		t.Fatalf("unexpected row count: %d", len(rows))
	}
	if rows[0][0] != "Row" || rows[0][3] != "Locator" {
		t.Fatalf("unexpected headers: %#v", rows[0])
	}
}

func TestExcelWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.xlsx")
	writer, err := WriterForFormat(FormatFromPath(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := writer.Write(path, samplePlan(t, 3)); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows("Fill plan")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 1+1+1+16 {
		t.Fatalf("unexpected row count: %d", len(rows))
	}
	if rows[2][1] != "add_row" {
		t.Fatalf("unexpected add-row line: %#v", rows[2])
	}
}

func TestWriterForFormat_Unsupported(t *testing.T) {
	t.Parallel()

	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestShiftCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "week.csv")
	out := filepath.Join(dir, "next.csv")
	content := "25/12/2024,ABCD1001,TUT,1,09:00\n\n01/01/2025,\"ABCD,1002\",LEC,2,10:00,T\n"
	if err := os.WriteFile(in, []byte(content), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	shifted, err := ShiftCSV(in, out, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shifted != 2 {
		t.Fatalf("unexpected shifted count: %d", shifted)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "08/01/2025,ABCD1001,TUT,1,09:00\n\n15/01/2025,\"ABCD,1002\",LEC,2,10:00,T\n"
	if string(got) != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestShiftCSV_ByteOrderMarkAndBareQuotes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "export.csv")
	out := filepath.Join(dir, "next.csv")
	content := "\ufeff25/08/2024,ABCD1001,TUT,1,09:00,,,,,Week 3,Discuss \"loops\" recap\n"
	if err := os.WriteFile(in, []byte(content), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	if _, err := ShiftCSV(in, out, 14); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "08/09/2024,ABCD1001,TUT,1,09:00,,,,,Week 3,\"Discuss \"\"loops\"\" recap\"\n"
	if string(got) != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestShiftCSV_InvalidDate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "week.csv")
	if err := os.WriteFile(in, []byte("01/08/2024,A,B,1,09:00\nnot-a-date,A,B,1,09:00\n"), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if _, err := ShiftCSV(in, filepath.Join(dir, "out.csv"), 14); err == nil {
		t.Fatalf("expected invalid date error")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.csv")); !os.IsNotExist(err) {
		t.Fatalf("output must not be written on error")
	}
}
