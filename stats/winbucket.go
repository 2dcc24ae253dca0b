package stats

import (
	"fmt"
	"sort"
	"sync"
)

// 贏倍邊界；區間為 [0,0]、(0,1)、[1,2) ... [10000,50000)、[50000,+inf)
// 最後一格只有極限檔封頂的局會落入，請勿任意調整
var bucketEdges = []int{1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 5000, 10000, 50000}

// 2000 倍以下查表
const lutMult = 2000

// WinBuckets 依 bet unit 快取分桶，O(1) 由贏分定位分佈欄位
type WinBuckets struct {
	mu     sync.Mutex
	labels []string
	byUnit map[int]*WinBucket
}

// WinBucket 單一 bet unit 的分桶
type WinBucket struct {
	bounds []int // 贏分邊界 (edge * bu)
	lut    []uint8
}

// Buckets 全域分桶表，多個 goroutine 可同時取用
var Buckets = newWinBuckets()

func newWinBuckets() *WinBuckets {
	labels := []string{"[0,0]", "(0,1)"}
	for i, e := range bucketEdges {
		if i == len(bucketEdges)-1 {
			labels = append(labels, fmt.Sprintf("[%d,+inf)", e))
			break
		}
		labels = append(labels, fmt.Sprintf("[%d,%d)", e, bucketEdges[i+1]))
	}
	return &WinBuckets{labels: labels, byUnit: make(map[int]*WinBucket)}
}

func (b *WinBuckets) WinBucketStr() []string { return b.labels }

// GetBucketByBetUnit bu 為 1 倍押注的整數單位
func (b *WinBuckets) GetBucketByBetUnit(bu int) *WinBucket {
	b.mu.Lock()
	defer b.mu.Unlock()
	if wb, ok := b.byUnit[bu]; ok {
		return wb
	}
	wb := &WinBucket{bounds: make([]int, len(bucketEdges))}
	for i, e := range bucketEdges {
		wb.bounds[i] = e * bu
	}
	wb.lut = make([]uint8, lutMult*bu)
	for w := 1; w < len(wb.lut); w++ {
		wb.lut[w] = uint8(wb.search(w))
	}
	b.byUnit[bu] = wb
	return wb
}

// Index 回傳贏分所屬的欄位
func (wb *WinBucket) Index(win int) int {
	if win <= 0 {
		return 0
	}
	if win < len(wb.lut) {
		return int(wb.lut[win])
	}
	return wb.search(win)
}

// search 跳過 [0,0] 後，落點 = 1 + 不大於 win 的邊界數
func (wb *WinBucket) search(win int) int {
	return 1 + sort.SearchInts(wb.bounds, win+1)
}
