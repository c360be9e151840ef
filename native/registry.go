package native

import (
	"quill/eval"
	"quill/types"
)

// Install registers the core operation set into a machine's user context.
// Dispatchers receive their level with the argument frame fulfilled and
// State at StDispatchEnter.
func Install(m *eval.Machine) error {
	anyType := []types.Heart(nil)
	numeric := []types.Heart{types.HEART_INTEGER, types.HEART_DECIMAL}
	blockOnly := []types.Heart{types.HEART_BLOCK}
	wordQuoted := []types.Heart{types.HEART_WORD, types.HEART_LITWORD}

	type def struct {
		name     string
		specs    []eval.ParamSpec
		dispatch eval.Executor
	}
	defs := []def{
		// Math
		{"add", binary("value1", "value2", numeric), mathAdd},
		{"subtract", binary("value1", "value2", numeric), mathSubtract},
		{"multiply", binary("value1", "value2", numeric), mathMultiply},
		{"divide", binary("value1", "value2", numeric), mathDivide},
		{"negate", []eval.ParamSpec{{Name: "value", Types: numeric}}, mathNegate},

		// Comparison and logic
		{"equal?", binary("value1", "value2", anyType), cmpEqual},
		{"lesser?", binary("value1", "value2", numeric), cmpLesser},
		{"greater?", binary("value1", "value2", numeric), cmpGreater},
		{"not", []eval.ParamSpec{{Name: "value", Types: anyType}}, logicNot},

		// Control
		{"if", []eval.ParamSpec{
			{Name: "condition", Types: anyType},
			{Name: "branch", Types: blockOnly},
		}, ctrlIf},
		{"either", []eval.ParamSpec{
			{Name: "condition", Types: anyType},
			{Name: "true-branch", Types: blockOnly},
			{Name: "false-branch", Types: blockOnly},
		}, ctrlEither},
		{"while", []eval.ParamSpec{
			{Name: "condition", Types: blockOnly},
			{Name: "body", Types: blockOnly},
		}, ctrlWhile},
		{"do", []eval.ParamSpec{{Name: "source", Types: blockOnly}}, ctrlDo},

		// Non-local flow
		{"catch", []eval.ParamSpec{
			{Name: "name", Quoted: true, Types: wordQuoted},
			{Name: "body", Types: blockOnly},
		}, flowCatch},
		{"throw", []eval.ParamSpec{
			{Name: "value", Types: anyType},
			{Name: "name", Quoted: true, Types: wordQuoted},
		}, flowThrow},
		{"return", []eval.ParamSpec{{Name: "value", Types: anyType}}, flowReturn},
		{"attempt", []eval.ParamSpec{{Name: "body", Types: blockOnly}}, flowAttempt},
		{"fail", []eval.ParamSpec{{Name: "reason", Types: []types.Heart{types.HEART_TEXT}}}, flowFail},
		{"halt", nil, flowHalt},

		// Definition
		{"func", []eval.ParamSpec{
			{Name: "spec", Types: blockOnly},
			{Name: "body", Types: blockOnly},
		}, defnFunc},

		// System
		{"recycle", nil, sysRecycle},
		{"collect", nil, sysRecycle},
		{"stats", nil, sysStats},
		{"print", []eval.ParamSpec{{Name: "value", Types: anyType}}, sysPrint},
		{"mold", []eval.ParamSpec{{Name: "value", Types: anyType}}, sysMold},
		{"checksum", []eval.ParamSpec{
			{Name: "data", Types: []types.Heart{types.HEART_BINARY, types.HEART_TEXT}},
		}, sysChecksum},
	}

	for _, d := range defs {
		if err := m.RegisterNative(d.name, d.specs, d.dispatch); err != nil {
			return err
		}
	}

	// Literal constants. The scanner emits words; these bind them.
	var c types.Cell
	types.InitLogic(&c, true)
	if err := m.SetLibWord("true", &c); err != nil {
		return err
	}
	types.InitLogic(&c, false)
	if err := m.SetLibWord("false", &c); err != nil {
		return err
	}
	types.InitNull(&c)
	return m.SetLibWord("null", &c)
}

func binary(a, b string, ts []types.Heart) []eval.ParamSpec {
	return []eval.ParamSpec{{Name: a, Types: ts}, {Name: b, Types: ts}}
}
