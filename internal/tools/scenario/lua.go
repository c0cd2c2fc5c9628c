// Package scenario runs Lua-scripted save/load scenarios against the
// in-memory host and a real coordinator.
package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a named list of steps built by a script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one recorded script call.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadFile runs the script at path and returns the Scenario it builds.
func LoadFile(path string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadString runs source and returns the Scenario it builds.
func LoadString(source string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runChunk(state)
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerScenarioType(state)
	registerScenarioConstructor(state)
	return state
}

func runChunk(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "template", Function: scenarioTemplate},
	{Name: "scene", Function: scenarioScene},
	{Name: "player", Function: scenarioPlayer},
	{Name: "enemy", Function: scenarioEnemy},
	{Name: "change_scene", Function: nameStep("change_scene")},
	{Name: "save", Function: scenarioSave},
	{Name: "load", Function: slotStep("load")},
	{Name: "delete", Function: slotStep("delete")},
	{Name: "auto_save", Function: bareStep("auto_save")},
	{Name: "quick_save", Function: bareStep("quick_save")},
	{Name: "quick_slot", Function: slotStep("quick_slot")},
	{Name: "autosave_enabled", Function: scenarioAutoSaveEnabled},
	{Name: "advance", Function: scenarioAdvance},
	{Name: "damage_player", Function: scenarioDamagePlayer},
	{Name: "move_player", Function: scenarioMovePlayer},
	{Name: "kill_enemy", Function: nameStep("kill_enemy")},
	{Name: "corrupt_slot", Function: slotStep("corrupt_slot")},
	{Name: "expect_player", Function: tableStep("expect_player")},
	{Name: "expect_enemy", Function: scenarioExpectEnemy},
	{Name: "expect_slot", Function: scenarioExpectSlot},
	{Name: "expect_error", Function: scenarioExpectError},
	{Name: "expect_scene", Function: nameStep("expect_scene")},
}

func scenarioTemplate(state *lua.State) int {
	scenario := checkScenario(state)
	kind := lua.CheckString(state, 2)
	data := optionalTable(state, 3)
	data["kind"] = kind
	appendStep(scenario, "template", data)
	return 0
}

func scenarioScene(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	appendStep(scenario, "scene", map[string]any{"name": name})
	return 0
}

func scenarioPlayer(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "player", optionalTable(state, 2))
	return 0
}

func scenarioEnemy(state *lua.State) int {
	scenario := checkScenario(state)
	kind := lua.CheckString(state, 2)
	entityID := lua.CheckString(state, 3)
	data := optionalTable(state, 4)
	data["kind"] = kind
	data["id"] = entityID
	appendStep(scenario, "enemy", data)
	return 0
}

func scenarioSave(state *lua.State) int {
	scenario := checkScenario(state)
	slot := lua.CheckInteger(state, 2)
	name := lua.OptString(state, 3, "")
	appendStep(scenario, "save", map[string]any{"slot": slot, "name": name})
	return 0
}

func scenarioAutoSaveEnabled(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeBoolean)
	appendStep(scenario, "autosave_enabled", map[string]any{"enabled": state.ToBoolean(2)})
	return 0
}

func scenarioAdvance(state *lua.State) int {
	scenario := checkScenario(state)
	seconds := lua.CheckNumber(state, 2)
	appendStep(scenario, "advance", map[string]any{"seconds": seconds})
	return 0
}

func scenarioDamagePlayer(state *lua.State) int {
	scenario := checkScenario(state)
	amount := lua.CheckInteger(state, 2)
	appendStep(scenario, "damage_player", map[string]any{"amount": amount})
	return 0
}

func scenarioMovePlayer(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(scenario, "move_player", map[string]any{"position": tableToGo(state, 2)})
	return 0
}

func scenarioExpectEnemy(state *lua.State) int {
	scenario := checkScenario(state)
	entityID := lua.CheckString(state, 2)
	data := optionalTable(state, 3)
	data["id"] = entityID
	appendStep(scenario, "expect_enemy", data)
	return 0
}

func scenarioExpectSlot(state *lua.State) int {
	scenario := checkScenario(state)
	slot := lua.CheckInteger(state, 2)
	data := optionalTable(state, 3)
	data["slot"] = slot
	appendStep(scenario, "expect_slot", data)
	return 0
}

func scenarioExpectError(state *lua.State) int {
	scenario := checkScenario(state)
	code := lua.OptString(state, 2, "")
	appendStep(scenario, "expect_error", map[string]any{"code": code})
	return 0
}

func bareStep(kind string) lua.Function {
	return func(state *lua.State) int {
		appendStep(checkScenario(state), kind, nil)
		return 0
	}
}

func slotStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		slot := lua.CheckInteger(state, 2)
		appendStep(scenario, kind, map[string]any{"slot": slot})
		return 0
	}
}

func nameStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		name := lua.CheckString(state, 2)
		appendStep(scenario, kind, map[string]any{"name": name})
		return 0
	}
}

func tableStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		lua.CheckType(state, 2, lua.TypeTable)
		appendStep(scenario, kind, tableToMap(state, 2))
		return 0
	}
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		lua.Errorf(state, "invalid scenario")
		return nil
	}
	return scenario
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a []any for sequence tables and a map otherwise.
func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}
	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
