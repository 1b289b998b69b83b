package modal

import "testing"

type order struct {
	ID    int
	Total float64
}

func TestOpenClose(t *testing.T) {
	var m Modal[order]
	if m.IsOpen() {
		t.Fatal("zero modal should be closed")
	}
	if _, ok := m.Selected(); ok {
		t.Fatal("zero modal should have no selection")
	}

	m.Open(order{ID: 3, Total: 12.5})
	if !m.IsOpen() {
		t.Fatal("expected open after Open")
	}
	got, ok := m.Selected()
	if !ok || got.ID != 3 {
		t.Errorf("Selected() = %+v, %v; want ID 3", got, ok)
	}

	m.Close()
	if m.IsOpen() {
		t.Error("expected closed after Close")
	}
	m.Close() // closing twice is harmless
}

func TestCloseLeavesCollectionAlone(t *testing.T) {
	orders := []order{{ID: 1}, {ID: 2}}
	var m Modal[order]
	m.Open(orders[1])
	m.Close()
	if len(orders) != 2 || orders[1].ID != 2 {
		t.Errorf("collection changed: %+v", orders)
	}
}

func TestOpenCopiesEntity(t *testing.T) {
	orders := []order{{ID: 1, Total: 5}}
	var m Modal[order]
	m.Open(orders[0])
	orders[0].Total = 99

	got, _ := m.Selected()
	if got.Total != 5 {
		t.Errorf("Selected().Total = %v, want 5", got.Total)
	}
}

func TestReopenReplacesSelection(t *testing.T) {
	var m Modal[order]
	m.Open(order{ID: 1})
	m.Open(order{ID: 2})
	got, _ := m.Selected()
	if got.ID != 2 {
		t.Errorf("Selected().ID = %d, want 2", got.ID)
	}
}
