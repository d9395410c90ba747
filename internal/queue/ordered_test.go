package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byVal(a, b *item) bool { return a.val < b.val }

func TestOrderedInsertMaintainsAscendingOrder(t *testing.T) {
	o := NewOrdered[item, *item](byVal)
	for _, v := range []int{5, 1, 4, 2, 3} {
		o.Insert(&item{val: v})
	}

	var got []int
	for {
		n, ok := o.Pop()
		if !ok {
			break
		}
		got = append(got, n.val)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

func TestOrderedPopReturnsMinimum(t *testing.T) {
	o := NewOrdered[item, *item](byVal)
	o.Insert(&item{val: 10})
	o.Insert(&item{val: 3})
	o.Insert(&item{val: 7})

	n, ok := o.Pop()
	require.True(t, ok)
	assert.Equal(t, 3, n.val)
	assert.Equal(t, 2, o.Len())
}

func TestOrderedRemovePartitionsPreservingOrder(t *testing.T) {
	o := NewOrdered[item, *item](byVal)
	for _, v := range []int{1, 2, 3, 4, 5, 6} {
		o.Insert(&item{val: v})
	}
	evens := o.Remove(func(i *item) bool { return i.val%2 == 0 })

	var gotEvens, gotOdds []int
	for {
		n, ok := evens.Pop()
		if !ok {
			break
		}
		gotEvens = append(gotEvens, n.val)
	}
	for {
		n, ok := o.Pop()
		if !ok {
			break
		}
		gotOdds = append(gotOdds, n.val)
	}
	assert.Equal(t, []int{2, 4, 6}, gotEvens)
	assert.Equal(t, []int{1, 3, 5}, gotOdds)
}

func TestOrderedMerge(t *testing.T) {
	a := NewOrdered[item, *item](byVal)
	b := NewOrdered[item, *item](byVal)
	a.Insert(&item{val: 1})
	a.Insert(&item{val: 5})
	b.Insert(&item{val: 2})
	b.Insert(&item{val: 3})

	a.Merge(b)
	assert.True(t, b.IsEmpty())

	var got []int
	for {
		n, ok := a.Pop()
		if !ok {
			break
		}
		got = append(got, n.val)
	}
	assert.Equal(t, []int{1, 2, 3, 5}, got)
}
