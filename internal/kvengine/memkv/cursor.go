package memkv

import (
	"bytes"

	"github.com/fpta-go/fpta/internal/fptaerr"
)

type cursor struct {
	d    *dbiState
	have bool
	cur  item
}

func (c *cursor) First() ([]byte, []byte, bool, error) {
	min, ok := c.d.tree.Min()
	if !ok {
		c.have = false
		return nil, nil, false, nil
	}
	c.cur, c.have = min, true
	return min.key, min.value, true, nil
}

func (c *cursor) Last() ([]byte, []byte, bool, error) {
	max, ok := c.d.tree.Max()
	if !ok {
		c.have = false
		return nil, nil, false, nil
	}
	c.cur, c.have = max, true
	return max.key, max.value, true, nil
}

func (c *cursor) Next() ([]byte, []byte, bool, error) {
	if !c.have {
		return c.First()
	}
	var next item
	found := false
	c.d.tree.AscendGreaterOrEqual(c.cur, func(it item) bool {
		if !c.d.less(c.cur, it) {
			return true // skip the current item itself
		}
		next, found = it, true
		return false
	})
	if !found {
		c.have = false
		return nil, nil, false, nil
	}
	c.cur, c.have = next, true
	return next.key, next.value, true, nil
}

func (c *cursor) Prev() ([]byte, []byte, bool, error) {
	if !c.have {
		return c.Last()
	}
	var prev item
	found := false
	c.d.tree.DescendLessOrEqual(c.cur, func(it item) bool {
		if !c.d.less(it, c.cur) {
			return true
		}
		prev, found = it, true
		return false
	})
	if !found {
		c.have = false
		return nil, nil, false, nil
	}
	c.cur, c.have = prev, true
	return prev.key, prev.value, true, nil
}

func (c *cursor) Seek(target []byte) ([]byte, []byte, bool, error) {
	var found item
	ok := false
	c.d.tree.AscendGreaterOrEqual(item{key: target}, func(it item) bool {
		found, ok = it, true
		return false
	})
	if !ok {
		c.have = false
		return nil, nil, false, nil
	}
	c.cur, c.have = found, true
	return found.key, found.value, true, nil
}

func (c *cursor) SeekExact(target []byte) ([]byte, bool, error) {
	found, ok := c.d.tree.Get(item{key: target})
	if !ok {
		return nil, false, nil
	}
	c.cur, c.have = found, true
	return found.value, true, nil
}

func (c *cursor) sameKey(a, b item) bool {
	cmp := c.d.cmp
	if cmp == nil {
		cmp = bytes.Compare
	}
	return cmp(a.key, b.key) == 0
}

func (c *cursor) NextDup() ([]byte, bool, error) {
	if !c.have {
		return nil, false, nil
	}
	prevKey := c.cur.key
	_, _, ok, err := c.Next()
	if err != nil || !ok || !c.sameKey(item{key: prevKey}, c.cur) {
		return nil, false, err
	}
	return c.cur.value, true, nil
}

func (c *cursor) PrevDup() ([]byte, bool, error) {
	if !c.have {
		return nil, false, nil
	}
	prevKey := c.cur.key
	_, _, ok, err := c.Prev()
	if err != nil || !ok || !c.sameKey(item{key: prevKey}, c.cur) {
		return nil, false, err
	}
	return c.cur.value, true, nil
}

func (c *cursor) FirstDup() ([]byte, bool, error) {
	if !c.have {
		return nil, false, nil
	}
	key := c.cur.key
	_, v, ok, err := c.Seek(key)
	if err != nil || !ok {
		return nil, false, err
	}
	return v, true, nil
}

func (c *cursor) LastDup() ([]byte, bool, error) {
	if !c.have {
		return nil, false, nil
	}
	key := c.cur.key
	var last item
	found := false
	c.d.tree.AscendGreaterOrEqual(item{key: key}, func(it item) bool {
		if !c.sameKey(it, item{key: key}) {
			return false
		}
		last, found = it, true
		return true
	})
	if !found {
		return nil, false, nil
	}
	c.cur, c.have = last, true
	return last.value, true, nil
}

func (c *cursor) CountDup() (int, error) {
	if !c.have {
		return 0, nil
	}
	key := c.cur.key
	n := 0
	c.d.tree.AscendGreaterOrEqual(item{key: key}, func(it item) bool {
		if !c.sameKey(it, item{key: key}) {
			return false
		}
		n++
		return true
	})
	return n, nil
}

func (c *cursor) Put(key, value []byte, noDupData bool) error {
	it := item{key: append([]byte{}, key...), value: append([]byte{}, value...)}
	if noDupData {
		if _, exists := c.d.tree.Get(it); exists {
			return fptaerr.New(fptaerr.KeyExist, op+".cursor.Put", c.d.name)
		}
	} else if c.have {
		c.d.tree.Delete(c.cur) // replace the item at the current position
	}
	c.d.tree.ReplaceOrInsert(it)
	c.cur, c.have = it, true
	return nil
}

func (c *cursor) Delete() error {
	if !c.have {
		return nil
	}
	c.d.tree.Delete(c.cur)
	c.have = false
	return nil
}

func (c *cursor) Close() {}
