package dietplan

import (
	"testing"
)

func testDays(t *testing.T, n int) []DayPlan {
	t.Helper()
	return BuildDays(n, "2025-03-10", nil)
}

func seedMeal(days []DayPlan, dayIdx int, mealType string, foods ...string) *Meal {
	meal := NewMeal(mealType, ResolveMealTime(mealType, nil, nil))
	meal.FoodOptions = meal.FoodOptions[:0]
	for i, f := range foods {
		opt := NewBlankOption(i)
		opt.Food = f
		meal.FoodOptions = append(meal.FoodOptions, opt)
	}
	days[dayIdx].Meals[mealType] = meal
	return meal
}

func TestAddMealToCell(t *testing.T) {
	days := testDays(t, 2)
	e := NewEditor(days, nil, false, nil)

	e.AddMealToCell(days[0].ID, "Breakfast")

	meal := e.Days()[0].Meals["Breakfast"]
	if meal == nil {
		t.Fatal("meal not created")
	}
	if meal.Time != "08:00" {
		t.Errorf("time = %q, want suggestion 08:00", meal.Time)
	}
	if len(meal.FoodOptions) != 1 || meal.FoodOptions[0].Label != "A Food" {
		t.Error("new meal should start with a single blank A Food option")
	}

	// Idempotent: a second add leaves the existing meal untouched.
	id := meal.ID
	e.AddMealToCell(days[0].ID, "Breakfast")
	if e.Days()[0].Meals["Breakfast"].ID != id {
		t.Error("existing meal replaced")
	}
}

func TestAddMealToCellReseedsEmptiedOptions(t *testing.T) {
	days := testDays(t, 1)
	meal := NewMeal("Lunch", "13:00")
	meal.FoodOptions = nil
	days[0].Meals["Lunch"] = meal

	e := NewEditor(days, nil, false, nil)
	e.AddMealToCell(days[0].ID, "Lunch")

	got := e.Days()[0].Meals["Lunch"]
	if got.ID != meal.ID {
		t.Error("existing meal replaced instead of re-seeded")
	}
	if len(got.FoodOptions) != 1 || !IsBlankOption(got.FoodOptions[0]) {
		t.Fatalf("expected one blank option after re-seed, got %d", len(got.FoodOptions))
	}
}

func TestAddOptionDoesNotRelabelExisting(t *testing.T) {
	days := testDays(t, 1)
	meal := seedMeal(days, 0, "Lunch", "Rice", "Pasta")
	meal.FoodOptions[0].Label = "A Food"
	meal.FoodOptions[1].Label = "B Food"

	e := NewEditor(days, nil, false, nil)
	e.AddFoodOption(days[0].ID, "Lunch")

	opts := e.Days()[0].Meals["Lunch"].FoodOptions
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	if opts[2].Label != "C Food" {
		t.Errorf("appended label = %q", opts[2].Label)
	}
	if opts[0].Label != "A Food" || opts[1].Label != "B Food" {
		t.Error("existing labels rewritten on add")
	}
}

func TestRemoveOptionKeepsLabels(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice", "Pasta", "Salad")

	e := NewEditor(days, nil, false, nil)
	e.RemoveFoodOption(days[0].ID, "Lunch", 0)

	opts := e.Days()[0].Meals["Lunch"].FoodOptions
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
	// Removal does not relabel: the survivors keep B and C.
	if opts[0].Label != "B Food" || opts[1].Label != "C Food" {
		t.Errorf("labels after remove = %q, %q", opts[0].Label, opts[1].Label)
	}
	if opts[0].Food != "Pasta" {
		t.Errorf("wrong option removed: first is %q", opts[0].Food)
	}
}

func TestRemoveLastOptionReinstatesBlank(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice")

	e := NewEditor(days, nil, false, nil)
	e.RemoveFoodOption(days[0].ID, "Lunch", 0)

	opts := e.Days()[0].Meals["Lunch"].FoodOptions
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
	if !IsBlankOption(opts[0]) || opts[0].Label != "A Food" {
		t.Error("expected a single blank A Food option")
	}
}

func TestMoveOptionRelabels(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice", "Pasta", "Salad")

	e := NewEditor(days, nil, false, nil)
	e.MoveOption(days[0].ID, "Lunch", 0, 2)

	opts := e.Days()[0].Meals["Lunch"].FoodOptions
	want := []string{"Pasta", "Salad", "Rice"}
	for i, w := range want {
		if opts[i].Food != w {
			t.Fatalf("order after move = [%s %s %s]", opts[0].Food, opts[1].Food, opts[2].Food)
		}
		if opts[i].Label != LetterFor(i) {
			t.Errorf("option %d label = %q after move", i, opts[i].Label)
		}
	}
}

func TestCopyOptionInsertsAndRelabels(t *testing.T) {
	days := testDays(t, 2)
	seedMeal(days, 0, "Lunch", "Rice")
	seedMeal(days, 1, "Dinner", "Soup", "Bread")

	e := NewEditor(days, nil, false, nil)
	src := CellRef{DayID: days[0].ID, MealType: "Lunch"}
	dst := CellRef{DayID: days[1].ID, MealType: "Dinner"}
	e.CopyOption(src, 0, dst, 1)

	opts := e.Days()[1].Meals["Dinner"].FoodOptions
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	if opts[1].Food != "Rice" {
		t.Errorf("inserted at wrong slot: %q", opts[1].Food)
	}
	for i := range opts {
		if opts[i].Label != LetterFor(i) {
			t.Errorf("option %d label = %q", i, opts[i].Label)
		}
	}
	// Copy, not move: source untouched, identifiers fresh.
	srcOpts := e.Days()[0].Meals["Lunch"].FoodOptions
	if len(srcOpts) != 1 || srcOpts[0].Food != "Rice" {
		t.Error("source cell modified")
	}
	if opts[1].ID == srcOpts[0].ID {
		t.Error("copied option shares ID with source")
	}
}

func TestCopyOptionOverwritesSingleBlankTarget(t *testing.T) {
	days := testDays(t, 2)
	seedMeal(days, 0, "Lunch", "Rice")

	e := NewEditor(days, nil, false, nil)
	e.AddMealToCell(days[1].ID, "Dinner")

	src := CellRef{DayID: days[0].ID, MealType: "Lunch"}
	dst := CellRef{DayID: days[1].ID, MealType: "Dinner"}
	e.CopyOption(src, 0, dst, 0)

	opts := e.Days()[1].Meals["Dinner"].FoodOptions
	if len(opts) != 1 {
		t.Fatalf("blank target must be overwritten in place, got %d options", len(opts))
	}
	if opts[0].Food != "Rice" || opts[0].Label != "A Food" {
		t.Errorf("overwritten option = %q label %q", opts[0].Food, opts[0].Label)
	}
}

func TestCopyMealToTargets(t *testing.T) {
	days := testDays(t, 3)
	src := seedMeal(days, 0, "Lunch", "Rice", "Pasta")
	src.ShowAlternatives = true

	e := NewEditor(days, nil, false, nil)
	e.CopyMealToTargets(
		CellRef{DayID: days[0].ID, MealType: "Lunch"},
		[]CellRef{
			{DayID: days[1].ID, MealType: "Lunch"},
			{DayID: days[2].ID, MealType: "Dinner"},
		},
	)

	for _, tc := range []struct {
		dayIdx   int
		mealType string
	}{{1, "Lunch"}, {2, "Dinner"}} {
		meal := e.Days()[tc.dayIdx].Meals[tc.mealType]
		if meal == nil {
			t.Fatalf("day %d %s: not copied", tc.dayIdx, tc.mealType)
		}
		if len(meal.FoodOptions) != 2 || meal.FoodOptions[0].Food != "Rice" {
			t.Errorf("day %d %s: content not copied", tc.dayIdx, tc.mealType)
		}
		if !meal.ShowAlternatives {
			t.Errorf("day %d %s: show_alternatives not copied", tc.dayIdx, tc.mealType)
		}
		if meal.Name != tc.mealType {
			t.Errorf("day %d: meal name = %q, want target type", tc.dayIdx, meal.Name)
		}
		if meal.ID == src.ID {
			t.Errorf("day %d %s: clone shares meal ID", tc.dayIdx, tc.mealType)
		}
		if meal.FoodOptions[0].ID == src.FoodOptions[0].ID {
			t.Errorf("day %d %s: clone shares option ID", tc.dayIdx, tc.mealType)
		}
	}

	// Mutating a copy must not leak back.
	e.Days()[1].Meals["Lunch"].FoodOptions[0].Food = "Quinoa"
	if e.Days()[0].Meals["Lunch"].FoodOptions[0].Food != "Rice" {
		t.Error("copies share state with source")
	}
}

func TestCopyMealSkipsFrozenTargets(t *testing.T) {
	days := testDays(t, 2)
	seedMeal(days, 0, "Lunch", "Rice")
	days[1].IsFrozen = true

	e := NewEditor(days, nil, false, nil)
	e.CopyMealToTargets(
		CellRef{DayID: days[0].ID, MealType: "Lunch"},
		[]CellRef{{DayID: days[1].ID, MealType: "Lunch"}},
	)

	if _, ok := e.Days()[1].Meals["Lunch"]; ok {
		t.Error("frozen day received a copy")
	}
}

func TestFindReplaceRenameMode(t *testing.T) {
	days := testDays(t, 2)
	seedMeal(days, 0, "Lunch", "White Rice", "Pasta")
	seedMeal(days, 1, "Dinner", "white rice  ")
	e := NewEditor(days, nil, false, nil)

	n := e.FindReplace("  WHITE RICE ", FoodOption{Food: "Brown Rice"}, ReplaceModeRename, nil, nil)
	if n != 2 {
		t.Fatalf("expected 2 replacements, got %d", n)
	}
	if e.Days()[0].Meals["Lunch"].FoodOptions[0].Food != "Brown Rice" {
		t.Error("day 1 not replaced")
	}
	if e.Days()[1].Meals["Dinner"].FoodOptions[0].Food != "Brown Rice" {
		t.Error("day 2 not replaced")
	}
	if e.Days()[0].Meals["Lunch"].FoodOptions[1].Food != "Pasta" {
		t.Error("non-matching option touched")
	}
}

func TestFindReplaceRenameKeepsNutrition(t *testing.T) {
	days := testDays(t, 1)
	meal := seedMeal(days, 0, "Lunch", "Rice")
	meal.FoodOptions[0].Cal = "200"
	meal.FoodOptions[0].Protein = "4"

	e := NewEditor(days, nil, false, nil)
	e.FindReplace("rice", FoodOption{Food: "Quinoa"}, ReplaceModeRename, nil, nil)

	opt := e.Days()[0].Meals["Lunch"].FoodOptions[0]
	if opt.Food != "Quinoa" {
		t.Errorf("food = %q", opt.Food)
	}
	if opt.Cal != "200" || opt.Protein != "4" {
		t.Error("rename mode must keep nutrition values")
	}
}

func TestFindReplaceResolveModeSwapsNutrition(t *testing.T) {
	days := testDays(t, 1)
	meal := seedMeal(days, 0, "Lunch", "Rice")
	meal.FoodOptions[0].Cal = "200"

	e := NewEditor(days, nil, false, nil)
	repl := FoodOption{Food: "Quinoa", Unit: "100 g", Cal: "120", Protein: "4.4", RecipeUUID: "r-1"}
	e.FindReplace("rice", repl, ReplaceModeResolve, nil, nil)

	opt := e.Days()[0].Meals["Lunch"].FoodOptions[0]
	if opt.Food != "Quinoa" || opt.Cal != "120" || opt.Protein != "4.4" || opt.RecipeUUID != "r-1" {
		t.Errorf("resolve mode did not swap the full food: %+v", opt)
	}
}

func TestFindReplaceTargetsSubset(t *testing.T) {
	days := testDays(t, 2)
	seedMeal(days, 0, "Lunch", "Rice")
	seedMeal(days, 1, "Lunch", "Rice")

	e := NewEditor(days, nil, false, nil)
	n := e.FindReplace("rice", FoodOption{Food: "Quinoa"}, ReplaceModeRename, []string{days[0].ID}, nil)
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}
	if e.Days()[1].Meals["Lunch"].FoodOptions[0].Food != "Rice" {
		t.Error("untargeted day modified")
	}
}

func TestFindReplaceTargetsMealTypes(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice")
	seedMeal(days, 0, "Dinner", "Rice")

	e := NewEditor(days, nil, false, nil)
	n := e.FindReplace("rice", FoodOption{Food: "Quinoa"}, ReplaceModeRename, nil, []string{"Dinner"})
	if n != 1 {
		t.Fatalf("replaced %d, want 1", n)
	}
	if e.Days()[0].Meals["Lunch"].FoodOptions[0].Food != "Rice" {
		t.Error("untargeted meal type modified")
	}
	if e.Days()[0].Meals["Dinner"].FoodOptions[0].Food != "Quinoa" {
		t.Error("targeted meal type not replaced")
	}
}

func TestFindDeleteTargetsMealTypes(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice", "Pasta")
	seedMeal(days, 0, "Dinner", "Rice")

	e := NewEditor(days, nil, false, nil)
	n := e.FindDelete("rice", nil, []string{"Lunch"})
	if n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
	lunch := e.Days()[0].Meals["Lunch"].FoodOptions
	if len(lunch) != 1 || lunch[0].Food != "Pasta" {
		t.Errorf("lunch options after delete = %+v", lunch)
	}
	if e.Days()[0].Meals["Dinner"].FoodOptions[0].Food != "Rice" {
		t.Error("untargeted meal type swept")
	}
}

func TestFindReplaceRequiresExactMatch(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "White Rice Bowl")

	e := NewEditor(days, nil, false, nil)
	if n := e.FindReplace("rice", FoodOption{Food: "Quinoa"}, ReplaceModeRename, nil, nil); n != 0 {
		t.Errorf("substring must not match, got %d replacements", n)
	}
}

func TestFindDeleteRelabelsAndReinstatesBlank(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice", "Pasta", "Rice")
	seedMeal(days, 0, "Dinner", "Rice")

	e := NewEditor(days, nil, false, nil)
	n := e.FindDelete("rice", nil, nil)
	if n != 3 {
		t.Fatalf("expected 3 deletions, got %d", n)
	}

	lunch := e.Days()[0].Meals["Lunch"].FoodOptions
	if len(lunch) != 1 || lunch[0].Food != "Pasta" {
		t.Fatalf("lunch after delete: %+v", lunch)
	}
	// Deletion relabels survivors.
	if lunch[0].Label != "A Food" {
		t.Errorf("survivor label = %q", lunch[0].Label)
	}

	dinner := e.Days()[0].Meals["Dinner"].FoodOptions
	if len(dinner) != 1 || !IsBlankOption(dinner[0]) {
		t.Error("emptied cell should hold a single blank option")
	}
}

func TestCompositeSums(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Breakfast", "")

	e := NewEditor(days, nil, false, nil)
	e.SetFoods(days[0].ID, "Breakfast", 0, []FoodItem{
		{Name: "Oats", Cal: "150", Carbs: "27", Protein: "5", Fats: "3", Fiber: "4"},
		{Name: "Banana", Cal: "89", Carbs: "22.8", Protein: "1.1", Fats: "0.3", Fiber: "2.6"},
	})

	opt := e.Days()[0].Meals["Breakfast"].FoodOptions[0]
	if opt.Food != "Oats + Banana" {
		t.Errorf("composite name = %q", opt.Food)
	}
	if opt.Cal != "239" {
		t.Errorf("cal = %q, want 239", opt.Cal)
	}
	if opt.Carbs != "50" {
		t.Errorf("carbs = %q, want rounded 50", opt.Carbs)
	}
	if opt.Protein != "6" {
		t.Errorf("protein = %q, want rounded 6", opt.Protein)
	}
}

func TestAddFoodPromotesSimpleOption(t *testing.T) {
	days := testDays(t, 1)
	meal := seedMeal(days, 0, "Breakfast", "Oats")
	meal.FoodOptions[0].Cal = "150"

	e := NewEditor(days, nil, false, nil)
	e.AddFood(days[0].ID, "Breakfast", 0, FoodItem{Name: "Banana", Cal: "89"})

	opt := e.Days()[0].Meals["Breakfast"].FoodOptions[0]
	if len(opt.Foods) != 2 {
		t.Fatalf("expected 2 constituents, got %d", len(opt.Foods))
	}
	if opt.Foods[0].Name != "Oats" || opt.Foods[0].Cal != "150" {
		t.Error("prior content not preserved as first constituent")
	}
	if opt.Food != "Oats + Banana" || opt.Cal != "239" {
		t.Errorf("composite not recomputed: %q / %q", opt.Food, opt.Cal)
	}
}

func TestRemoveFoodCollapsesToSimple(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Breakfast", "")

	e := NewEditor(days, nil, false, nil)
	e.SetFoods(days[0].ID, "Breakfast", 0, []FoodItem{
		{Name: "Oats", Cal: "150", Unit: "40 g"},
		{Name: "Banana", Cal: "89"},
	})
	e.RemoveFood(days[0].ID, "Breakfast", 0, 1)

	opt := e.Days()[0].Meals["Breakfast"].FoodOptions[0]
	if len(opt.Foods) != 0 {
		t.Fatal("expected simple option after collapse")
	}
	if opt.Food != "Oats" || opt.Cal != "150" || opt.Unit != "40 g" {
		t.Errorf("collapsed option = %+v", opt)
	}
}

func TestAddAndRemoveMealType(t *testing.T) {
	days := testDays(t, 2)
	seedMeal(days, 0, "Post-Workout", "Shake")

	e := NewEditor(days, nil, false, nil)
	if !e.AddMealType("Post-Workout Redux", "17:00") {
		t.Fatal("add meal type failed")
	}
	if e.AddMealType("post-workout redux", "18:00") {
		t.Error("duplicate name accepted (case-insensitive)")
	}
	if e.AddMealType("   ", "10:00") {
		t.Error("blank name accepted")
	}

	e.RemoveMealType("Post-Workout Redux")
	for _, c := range e.Configs() {
		if c.Name == "Post-Workout Redux" {
			t.Error("config not removed")
		}
	}
}

func TestRemoveMealTypeDeletesCells(t *testing.T) {
	days := testDays(t, 2)
	seedMeal(days, 0, "Snack", "Apple")
	seedMeal(days, 1, "Snack", "Pear")
	days[1].IsFrozen = true

	e := NewEditor(days, []MealTypeConfig{{Name: "Snack", Time: "15:00"}}, false, nil)
	e.RemoveMealType("Snack")

	if _, ok := e.Days()[0].Meals["Snack"]; ok {
		t.Error("cell not deleted from unfrozen day")
	}
	if _, ok := e.Days()[1].Meals["Snack"]; !ok {
		t.Error("frozen day lost its cell")
	}
}

func TestSetMealTypeTimeSeedsNewCellsOnly(t *testing.T) {
	days := testDays(t, 1)
	existing := seedMeal(days, 0, "Lunch", "Rice")
	existing.Time = "13:00"

	e := NewEditor(days, []MealTypeConfig{{Name: "Lunch", Time: "13:00"}}, false, nil)
	e.SetMealTypeTime("Lunch", "12:00")

	if e.Days()[0].Meals["Lunch"].Time != "13:00" {
		t.Error("existing meal time rewritten by type-level override")
	}

	days2 := testDays(t, 1)
	e2 := NewEditor(days2, e.Configs(), false, nil)
	e2.SetMealTypeTime("Lunch", "12:00")
	e2.AddMealToCell(days2[0].ID, "Lunch")
	if e2.Days()[0].Meals["Lunch"].Time != "12:00" {
		t.Error("new meal did not inherit type-level override")
	}
}

func TestReadOnlyGuard(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice")

	updates := 0
	e := NewEditor(days, nil, true, func([]DayPlan, []MealTypeConfig) { updates++ })

	e.AddFoodOption(days[0].ID, "Lunch")
	e.RemoveFoodOption(days[0].ID, "Lunch", 0)
	e.FindDelete("rice", nil, nil)
	e.SetNote(days[0].ID, "x")
	e.HoldDay(days[0].ID, "x")

	if updates != 0 {
		t.Errorf("read-only editor emitted %d updates", updates)
	}
	if len(e.Days()[0].Meals["Lunch"].FoodOptions) != 1 {
		t.Error("read-only editor mutated state")
	}
}

func TestFrozenDayRejectsEdits(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice")

	e := NewEditor(days, nil, false, nil)
	e.FreezeDay(days[0].ID, "dr.smith")

	e.AddFoodOption(days[0].ID, "Lunch")
	e.SetNote(days[0].ID, "blocked")
	e.HoldDay(days[0].ID, "blocked")

	day := e.Days()[0]
	if len(day.Meals["Lunch"].FoodOptions) != 1 || day.Note != "" || day.IsHeld {
		t.Error("frozen day accepted edits")
	}
	if day.FrozenBy != "dr.smith" || day.FrozenAt == "" {
		t.Error("freeze metadata missing")
	}

	e.UnfreezeDay(days[0].ID)
	e.SetNote(days[0].ID, "ok")
	if e.Days()[0].Note != "ok" {
		t.Error("unfrozen day still rejects edits")
	}
}

func TestHoldAndRelease(t *testing.T) {
	days := testDays(t, 1)
	e := NewEditor(days, nil, false, nil)

	e.HoldDay(days[0].ID, "sick day")
	if !e.Days()[0].IsHeld || e.Days()[0].HoldReason != "sick day" {
		t.Error("hold not recorded")
	}

	e.ReleaseDay(days[0].ID)
	if e.Days()[0].IsHeld || e.Days()[0].HoldReason != "" {
		t.Error("release did not clear hold")
	}
}

func TestOnUpdateFiresPerMutation(t *testing.T) {
	days := testDays(t, 1)
	seedMeal(days, 0, "Lunch", "Rice")

	updates := 0
	e := NewEditor(days, nil, false, func([]DayPlan, []MealTypeConfig) { updates++ })

	e.AddFoodOption(days[0].ID, "Lunch")
	e.SetNote(days[0].ID, "note")
	// A no-op (bad index) must not fire.
	e.RemoveFoodOption(days[0].ID, "Lunch", 99)

	if updates != 2 {
		t.Errorf("expected 2 updates, got %d", updates)
	}
}
