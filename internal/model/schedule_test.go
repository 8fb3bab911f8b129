package model

import "testing"

func TestComputeSnapshotID_Deterministic(t *testing.T) {
	assignments := []Assignment{
		{CourseID: "CS101", InstructorID: "prof-01", TimeSlot: "MON 09:00-10:30"},
		{CourseID: "CS202", InstructorID: "ta-01", TimeSlot: "TUE 13:00-14:30"},
	}

	a := ComputeSnapshotID(2025, "fac-cs", nil, assignments)
	b := ComputeSnapshotID(2025, "fac-cs", nil, assignments)
	if a != b {
		t.Errorf("相同输入应得到相同快照ID: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("期望64位十六进制哈希，实际长度=%d", len(a))
	}
}

func TestComputeSnapshotID_OrderIndependent(t *testing.T) {
	a1 := []Assignment{
		{CourseID: "CS101", InstructorID: "prof-01", TimeSlot: "MON 09:00-10:30"},
		{CourseID: "CS202", InstructorID: "ta-01", TimeSlot: "TUE 13:00-14:30"},
	}
	a2 := []Assignment{
		{CourseID: "CS202", InstructorID: "ta-01", TimeSlot: "TUE 13:00-14:30"},
		{CourseID: "CS101", InstructorID: "prof-01", TimeSlot: "MON 09:00-10:30"},
	}

	if ComputeSnapshotID(2025, "fac-cs", nil, a1) != ComputeSnapshotID(2025, "fac-cs", nil, a2) {
		t.Error("分配顺序不应影响快照ID")
	}
}

func TestComputeSnapshotID_DistinctInputs(t *testing.T) {
	base := []Assignment{{CourseID: "CS101", InstructorID: "prof-01", TimeSlot: "MON 09:00-10:30"}}
	id := ComputeSnapshotID(2025, "fac-cs", nil, base)

	// 不同学年
	if ComputeSnapshotID(2026, "fac-cs", nil, base) == id {
		t.Error("不同学年应得到不同快照ID")
	}
	// 不同院系
	if ComputeSnapshotID(2025, "fac-math", nil, base) == id {
		t.Error("不同院系应得到不同快照ID")
	}
	// 不同父快照
	parent := "abc123"
	if ComputeSnapshotID(2025, "fac-cs", &parent, base) == id {
		t.Error("不同父快照应得到不同快照ID")
	}
	// 不同分配集合
	other := []Assignment{{CourseID: "CS101", InstructorID: "prof-02", TimeSlot: "MON 09:00-10:30"}}
	if ComputeSnapshotID(2025, "fac-cs", nil, other) == id {
		t.Error("不同分配集合应得到不同快照ID")
	}
}

func TestComputeSnapshotID_FieldBoundary(t *testing.T) {
	// 字段分隔符保证 ("ab","c") 与 ("a","bc") 不会串成相同序列
	a1 := []Assignment{{CourseID: "ab", InstructorID: "c", TimeSlot: "x"}}
	a2 := []Assignment{{CourseID: "a", InstructorID: "bc", TimeSlot: "x"}}

	if ComputeSnapshotID(2025, "fac-cs", nil, a1) == ComputeSnapshotID(2025, "fac-cs", nil, a2) {
		t.Error("字段边界不同的分配不应得到相同快照ID")
	}
}
