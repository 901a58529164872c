// Package compressor packs sparse integer matrices such as LL(1) tables. Rows that
// are equal are stored once (UniqueEntriesTable), and the remaining rows are overlaid
// so that their non-empty cells do not collide (RowDisplacementTable). Table chains
// both.
package compressor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidTable = errors.New("invalid table")
	ErrOutOfRange   = errors.New("indexes are out of range")
)

type OriginalTable struct {
	entries  []int
	rowCount int
	colCount int
}

func NewOriginalTable(entries []int, colCount int) (*OriginalTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: entries is empty", ErrInvalidTable)
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("%w: colCount must be >=1", ErrInvalidTable)
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("%w: entries length or column count are incorrect; entries length: %v, column count: %v", ErrInvalidTable, len(entries), colCount)
	}

	return &OriginalTable{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

type Compressor interface {
	Compress(orig *OriginalTable) error
	Lookup(row, col int) (int, error)
	OriginalTableSize() (int, int)
}

var (
	_ Compressor = &UniqueEntriesTable{}
	_ Compressor = &RowDisplacementTable{}
	_ Compressor = &Table{}
)

type UniqueEntriesTable struct {
	UniqueEntries    []int `json:"unique_entries"`
	RowNums          []int `json:"row_nums"`
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
}

func NewUniqueEntriesTable() *UniqueEntriesTable {
	return &UniqueEntriesTable{}
}

func (tab *UniqueEntriesTable) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return 0, fmt.Errorf("%w: [%v, %v]", ErrOutOfRange, row, col)
	}
	return tab.UniqueEntries[tab.RowNums[row]*tab.OriginalColCount+col], nil
}

func (tab *UniqueEntriesTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

// UniqueRowCount returns the number of distinct rows.
func (tab *UniqueEntriesTable) UniqueRowCount() int {
	if tab.OriginalColCount == 0 {
		return 0
	}
	return len(tab.UniqueEntries) / tab.OriginalColCount
}

func (tab *UniqueEntriesTable) Compress(orig *OriginalTable) error {
	var uniqueEntries []int
	rowNums := make([]int, orig.rowCount)
	hash2RowNum := map[string]int{}
	nextRowNum := 0
	for row := 0; row < orig.rowCount; row++ {
		var rowHash string
		{
			buf := make([]byte, 0, orig.colCount*binary.MaxVarintLen64)
			b := make([]byte, binary.MaxVarintLen64)
			for col := 0; col < orig.colCount; col++ {
				n := binary.PutVarint(b, int64(orig.entries[row*orig.colCount+col]))
				buf = append(buf, b[:n]...)
			}
			rowHash = string(buf)
		}
		rowNum, ok := hash2RowNum[rowHash]
		if !ok {
			rowNum = nextRowNum
			nextRowNum++
			hash2RowNum[rowHash] = rowNum
			start := row * orig.colCount
			uniqueEntries = append(uniqueEntries, orig.entries[start:start+orig.colCount]...)
		}
		rowNums[row] = rowNum
	}

	tab.UniqueEntries = uniqueEntries
	tab.RowNums = rowNums
	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount

	return nil
}

const ForbiddenValue = -1

type RowDisplacementTable struct {
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

func NewRowDisplacementTable(emptyValue int) *RowDisplacementTable {
	return &RowDisplacementTable{
		EmptyValue: emptyValue,
	}
}

func (tab *RowDisplacementTable) Lookup(row int, col int) (int, error) {
	if row < 0 || row >= tab.OriginalRowCount || col < 0 || col >= tab.OriginalColCount {
		return tab.EmptyValue, fmt.Errorf("%w: [%v, %v]", ErrOutOfRange, row, col)
	}
	d := tab.RowDisplacement[row]
	if d+col >= len(tab.Bounds) || tab.Bounds[d+col] != row {
		return tab.EmptyValue, nil
	}
	return tab.Entries[d+col], nil
}

func (tab *RowDisplacementTable) OriginalTableSize() (int, int) {
	return tab.OriginalRowCount, tab.OriginalColCount
}

type rowInfo struct {
	rowNum        int
	nonEmptyCount int
	nonEmptyCol   []int
}

// Compress places the rows with the most non-empty cells first, each at the lowest
// displacement where it collides with no placed cell.
func (tab *RowDisplacementTable) Compress(orig *OriginalTable) error {
	rowInfo := make([]rowInfo, orig.rowCount)
	for row := 0; row < orig.rowCount; row++ {
		rowInfo[row].rowNum = row
		for col := 0; col < orig.colCount; col++ {
			if orig.entries[row*orig.colCount+col] == tab.EmptyValue {
				continue
			}
			rowInfo[row].nonEmptyCount++
			rowInfo[row].nonEmptyCol = append(rowInfo[row].nonEmptyCol, col)
		}
	}
	sort.SliceStable(rowInfo, func(i int, j int) bool {
		return rowInfo[i].nonEmptyCount > rowInfo[j].nonEmptyCount
	})

	var entries []int
	var bounds []int
	grow := func(size int) {
		for len(entries) < size {
			entries = append(entries, tab.EmptyValue)
			bounds = append(bounds, ForbiddenValue)
		}
	}
	grow(orig.colCount)

	resultBottom := orig.colCount
	rowDisplacement := make([]int, orig.rowCount)
	for _, rInfo := range rowInfo {
		if rInfo.nonEmptyCount <= 0 {
			continue
		}

		d := 0
		for {
			grow(d + orig.colCount)
			isOverlapped := false
			for _, col := range rInfo.nonEmptyCol {
				if bounds[d+col] != ForbiddenValue {
					isOverlapped = true
					break
				}
			}
			if !isOverlapped {
				break
			}
			d++
		}

		rowDisplacement[rInfo.rowNum] = d
		for _, col := range rInfo.nonEmptyCol {
			entries[d+col] = orig.entries[(rInfo.rowNum*orig.colCount)+col]
			bounds[d+col] = rInfo.rowNum
		}
		if d+orig.colCount > resultBottom {
			resultBottom = d + orig.colCount
		}
	}

	tab.OriginalRowCount = orig.rowCount
	tab.OriginalColCount = orig.colCount
	tab.Entries = entries[:resultBottom]
	tab.Bounds = bounds[:resultBottom]
	tab.RowDisplacement = rowDisplacement

	return nil
}

// Table removes duplicate rows and then overlays the distinct rows.
type Table struct {
	UniqueEntries *UniqueEntriesTable   `json:"unique_entries"`
	Displacement  *RowDisplacementTable `json:"displacement"`
}

func NewTable(emptyValue int) *Table {
	return &Table{
		UniqueEntries: NewUniqueEntriesTable(),
		Displacement:  NewRowDisplacementTable(emptyValue),
	}
}

func (tab *Table) Compress(orig *OriginalTable) error {
	err := tab.UniqueEntries.Compress(orig)
	if err != nil {
		return err
	}
	unique, err := NewOriginalTable(tab.UniqueEntries.UniqueEntries, orig.colCount)
	if err != nil {
		return err
	}
	return tab.Displacement.Compress(unique)
}

func (tab *Table) Lookup(row, col int) (int, error) {
	if row < 0 || row >= tab.UniqueEntries.OriginalRowCount || col < 0 || col >= tab.UniqueEntries.OriginalColCount {
		return tab.Displacement.EmptyValue, fmt.Errorf("%w: [%v, %v]", ErrOutOfRange, row, col)
	}
	return tab.Displacement.Lookup(tab.UniqueEntries.RowNums[row], col)
}

func (tab *Table) OriginalTableSize() (int, int) {
	return tab.UniqueEntries.OriginalTableSize()
}

// Size returns the number of integers the compressed form stores.
func (tab *Table) Size() int {
	return len(tab.UniqueEntries.RowNums) + len(tab.Displacement.Entries) + len(tab.Displacement.Bounds) + len(tab.Displacement.RowDisplacement)
}
