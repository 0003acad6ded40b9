package instruction

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/expression"
)

// FromExpression lowers a parsed route into instructions. Scoped segments
// become children of the deepest last instruction on their left, unless that
// segment ends with '!'. A composite with a leading '+' marks its
// instructions as appending. A viewport written after a group is kept on the
// expression only.
func FromExpression(expr *expression.RouteExpression) ([]*ViewportInstruction, error) {
	return lower(expr.Root, 0, 0, false)
}

func lower(e expression.Expression, open, close int, appendMode bool) ([]*ViewportInstruction, error) {
	switch x := e.(type) {
	case *expression.CompositeSegmentExpression:
		var out []*ViewportInstruction
		last := len(x.Siblings) - 1
		for i, sib := range x.Siblings {
			o, c := 0, 0
			if i == 0 {
				o = open
			}
			if i == last {
				c = close
			}
			instrs, err := lower(sib, o, c, appendMode || x.Append)
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
		}
		return out, nil

	case *expression.ScopedSegmentExpression:
		left, err := lower(x.Left, open, 0, appendMode)
		if err != nil {
			return nil, err
		}
		// A '!' on the left segment ends its scope, so the right side
		// becomes its siblings instead of its children.
		seg, ok := x.Left.(*expression.SegmentExpression)
		unscoped := ok && !seg.Scoped
		right, err := lower(x.Right, 0, close, unscoped && appendMode)
		if err != nil {
			return nil, err
		}
		if len(left) == 0 {
			return right, nil
		}
		if unscoped {
			return append(left, right...), nil
		}
		cur := left[len(left)-1]
		for len(cur.Children) > 0 {
			cur = cur.Children[len(cur.Children)-1]
		}
		cur.Children = append(cur.Children, right...)
		return left, nil

	case *expression.SegmentGroupExpression:
		return lower(x.Expression, open+1, close+1, appendMode)

	case *expression.SegmentExpression:
		if x.IsEmpty() {
			return nil, nil
		}
		return []*ViewportInstruction{{
			Append:    appendMode,
			Open:      open,
			Close:     close,
			Component: Component{kind: KindName, name: x.Component.Name},
			Viewport:  x.Viewport.Name,
			Params:    Params(x.Component.ParameterList.Params()),
		}}, nil
	}
	return nil, fmt.Errorf("unexpected %s expression", e.Kind())
}
