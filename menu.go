package main

import (
	"fmt"
	"strconv"
	"time"

	"zoo-management/zoo"
)

// runMenus drives the main menu until Exit is chosen or input ends.
func runMenus(p *prompter, mgr *zoo.ZooManager) {
	for {
		fmt.Fprint(p.out, "\n=== Zoo Management Main Menu ===\n"+
			"1) Animals\n"+
			"2) Exhibits\n"+
			"3) Health Care\n"+
			"4) Exit\n")
		choice, ok := p.readInt("Choose an option: ", 1, 4)
		if !ok {
			return
		}
		switch choice {
		case 1:
			if !animalsMenu(p, mgr) {
				return
			}
		case 2:
			if !exhibitsMenu(p, mgr) {
				return
			}
		case 3:
			if !careMenu(p, mgr) {
				return
			}
		case 4:
			fmt.Fprintln(p.out, "Goodbye!")
			return
		}
	}
}

// Each submenu returns false when input ended inside it.

func animalsMenu(p *prompter, mgr *zoo.ZooManager) bool {
	for {
		fmt.Fprint(p.out, "\n-- Animals Menu --\n"+
			"1) Add New Animal\n"+
			"2) View All Animals\n"+
			"3) Update Animal Information\n"+
			"4) Remove Animal\n"+
			"5) Back to Main Menu\n")
		opt, ok := p.readInt("Choose: ", 1, 5)
		if !ok {
			return false
		}
		switch opt {
		case 1:
			ok = handleAddAnimal(p, mgr)
		case 2:
			handleListAnimals(p, mgr)
		case 3:
			ok = handleUpdateAnimal(p, mgr)
		case 4:
			ok = handleRemoveAnimal(p, mgr)
		case 5:
			return true
		}
		if !ok {
			return false
		}
	}
}

func exhibitsMenu(p *prompter, mgr *zoo.ZooManager) bool {
	for {
		fmt.Fprint(p.out, "\n-- Exhibits Menu --\n"+
			"1) Add New Exhibit\n"+
			"2) View All Exhibits\n"+
			"3) View Animals in Exhibit\n"+
			"4) Back to Main Menu\n")
		opt, ok := p.readInt("Choose: ", 1, 4)
		if !ok {
			return false
		}
		switch opt {
		case 1:
			ok = handleAddExhibit(p, mgr)
		case 2:
			handleListExhibits(p, mgr)
		case 3:
			ok = handleViewExhibit(p, mgr)
		case 4:
			return true
		}
		if !ok {
			return false
		}
	}
}

func careMenu(p *prompter, mgr *zoo.ZooManager) bool {
	for {
		fmt.Fprint(p.out, "\n-- Health Care Menu --\n"+
			"1) Record Feeding\n"+
			"2) Record Health Check\n"+
			"3) View Care Records\n"+
			"4) Back to Main Menu\n")
		opt, ok := p.readInt("Choose: ", 1, 4)
		if !ok {
			return false
		}
		switch opt {
		case 1:
			ok = handleRecordFeeding(p, mgr)
		case 2:
			ok = handleRecordHealthCheck(p, mgr)
		case 3:
			ok = handleViewCare(p, mgr)
		case 4:
			return true
		}
		if !ok {
			return false
		}
	}
}

// ------------------ Animals ------------------

func handleAddAnimal(p *prompter, mgr *zoo.ZooManager) bool {
	name, ok := p.line("Name: ")
	if !ok {
		return false
	}
	species, ok := p.line("Species: ")
	if !ok {
		return false
	}
	id, ok := p.readInt("ID (integer): ", 1, 999999)
	if !ok {
		return false
	}
	age, ok := p.readInt("Age: ", 0, 200)
	if !ok {
		return false
	}

	fmt.Fprintln(p.out, "\nSelect Exhibit for this animal:")
	exIdx, ok := selectExhibit(p, mgr)
	if !ok {
		return false
	}

	added, err := mgr.AddAnimal(zoo.Animal{ID: int64(id), Name: name, Species: species, Age: age}, exIdx)
	switch {
	case err != nil:
		p.fail("Error adding animal", err)
	case !added:
		p.warn("Sorry, that exhibit is full!")
	default:
		p.success("Animal '%s' added successfully!", name)
	}
	return true
}

func handleListAnimals(p *prompter, mgr *zoo.ZooManager) {
	animals := mgr.Animals.List()
	if len(animals) == 0 {
		fmt.Fprintln(p.out, "No animals registered.")
		return
	}
	rows := [][]string{{"#", "ID", "Name", "Species", "Age", "Exhibit"}}
	for i, a := range animals {
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.FormatInt(a.ID, 10),
			a.Name,
			a.Species,
			strconv.Itoa(a.Age),
			a.Exhibit,
		})
	}
	p.table(rows)
}

// selectAnimal lists the animals and asks for one. It reports idx -1 when
// there is nothing to choose from.
func selectAnimal(p *prompter, mgr *zoo.ZooManager, prompt string) (int, bool) {
	handleListAnimals(p, mgr)
	n := mgr.Animals.Count()
	if n == 0 {
		return -1, true
	}
	return p.readInt(fmt.Sprintf("%s (0-%d): ", prompt, n-1), 0, n-1)
}

func handleUpdateAnimal(p *prompter, mgr *zoo.ZooManager) bool {
	idx, ok := selectAnimal(p, mgr, "Which animal number to update?")
	if !ok || idx < 0 {
		return ok
	}
	cur, err := mgr.Animals.ByIndex(idx)
	if err != nil {
		p.fail("Error selecting animal", err)
		return true
	}

	name, ok := p.line(fmt.Sprintf("New name (blank keeps '%s'): ", cur.Name))
	if !ok {
		return false
	}
	if name == "" {
		name = cur.Name
	}
	species, ok := p.line(fmt.Sprintf("New species (blank keeps '%s'): ", cur.Species))
	if !ok {
		return false
	}
	if species == "" {
		species = cur.Species
	}
	age, ok := p.readInt("New age: ", 0, 200)
	if !ok {
		return false
	}

	fmt.Fprintln(p.out, "\nSelect new Exhibit for this animal:")
	exIdx, ok := selectExhibit(p, mgr)
	if !ok {
		return false
	}
	ex, err := mgr.Exhibits.ByIndex(exIdx)
	if err != nil {
		p.fail("Error selecting exhibit", err)
		return true
	}

	updated, err := mgr.UpdateAnimal(idx, zoo.AnimalUpdate{Name: name, Species: species, Age: age, Exhibit: ex.Name})
	switch {
	case err != nil:
		p.fail("Error updating animal", err)
	case !updated:
		p.warn("Exhibit '%s' is full; '%s' stays in '%s'.", ex.Name, cur.Name, cur.Exhibit)
	default:
		p.success("Animal updated.")
	}
	return true
}

func handleRemoveAnimal(p *prompter, mgr *zoo.ZooManager) bool {
	idx, ok := selectAnimal(p, mgr, "Which animal number to remove?")
	if !ok || idx < 0 {
		return ok
	}
	removed, err := mgr.RemoveAnimal(idx)
	switch {
	case err != nil:
		p.fail("Failed to remove animal", err)
	case !removed:
		p.warn("Failed to remove animal from exhibit or manager.")
	default:
		p.success("Animal removed successfully.")
	}
	return true
}

// ------------------ Exhibits ------------------

func handleAddExhibit(p *prompter, mgr *zoo.ZooManager) bool {
	name, ok := p.line("Exhibit Name: ")
	if !ok {
		return false
	}
	habitat, ok := p.line("Exhibit Type: ")
	if !ok {
		return false
	}
	capacity, ok := p.readInt("Capacity: ", 1, 10000)
	if !ok {
		return false
	}
	if _, err := mgr.AddExhibit(name, habitat, capacity); err != nil {
		p.fail("Error adding exhibit", err)
		return true
	}
	p.success("Exhibit '%s' added.", name)
	return true
}

func handleListExhibits(p *prompter, mgr *zoo.ZooManager) {
	exhibits := mgr.Exhibits.List()
	if len(exhibits) == 0 {
		fmt.Fprintln(p.out, "No exhibits registered.")
		return
	}
	rows := [][]string{{"#", "Name", "Type", "Occupied", "Capacity"}}
	for i, ex := range exhibits {
		rows = append(rows, []string{
			strconv.Itoa(i),
			ex.Name,
			ex.Type,
			strconv.Itoa(ex.Occupied),
			strconv.Itoa(ex.Capacity),
		})
	}
	p.table(rows)
}

func selectExhibit(p *prompter, mgr *zoo.ZooManager) (int, bool) {
	handleListExhibits(p, mgr)
	n := mgr.Exhibits.Count()
	if n == 0 {
		return -1, true
	}
	return p.readInt(fmt.Sprintf("Which exhibit index? (0-%d): ", n-1), 0, n-1)
}

func handleViewExhibit(p *prompter, mgr *zoo.ZooManager) bool {
	idx, ok := selectExhibit(p, mgr)
	if !ok || idx < 0 {
		return ok
	}
	ex, err := mgr.Exhibits.ByIndex(idx)
	if err != nil {
		p.fail("Error selecting exhibit", err)
		return true
	}
	occupants := ex.Occupants()
	fmt.Fprintf(p.out, "\nAnimals in '%s' (%d/%d):\n", ex.Name, len(occupants), ex.Capacity())
	if len(occupants) == 0 {
		fmt.Fprintln(p.out, "No animals in this exhibit.")
		return true
	}
	rows := [][]string{{"Slot", "Name"}}
	for _, o := range occupants {
		rows = append(rows, []string{strconv.Itoa(o.Slot), o.Name})
	}
	p.table(rows)
	return true
}

// ------------------ Health care ------------------

func handleRecordFeeding(p *prompter, mgr *zoo.ZooManager) bool {
	idx, ok := selectAnimal(p, mgr, "Select animal")
	if !ok || idx < 0 {
		return ok
	}
	food, ok := p.line("Food type: ")
	if !ok {
		return false
	}
	amount, ok := p.readFloat("Amount (kg): ", 0, 1000)
	if !ok {
		return false
	}
	if _, err := mgr.RecordFeeding(idx, food, amount); err != nil {
		p.fail("Error recording feeding", err)
		return true
	}
	a, _ := mgr.Animals.ByIndex(idx)
	p.success("Feeding record added for '%s'.", a.Name)
	return true
}

func handleRecordHealthCheck(p *prompter, mgr *zoo.ZooManager) bool {
	idx, ok := selectAnimal(p, mgr, "Select animal")
	if !ok || idx < 0 {
		return ok
	}
	vet, ok := p.line("Vet name: ")
	if !ok {
		return false
	}
	diagnosis, ok := p.line("Diagnosis: ")
	if !ok {
		return false
	}
	notes, ok := p.line("Notes: ")
	if !ok {
		return false
	}
	if _, err := mgr.RecordHealthCheck(idx, vet, notes, diagnosis); err != nil {
		p.fail("Error recording health check", err)
		return true
	}
	a, _ := mgr.Animals.ByIndex(idx)
	p.success("Health record added for '%s'.", a.Name)
	return true
}

func handleViewCare(p *prompter, mgr *zoo.ZooManager) bool {
	idx, ok := selectAnimal(p, mgr, "Select animal")
	if !ok || idx < 0 {
		return ok
	}
	a, err := mgr.Animals.ByIndex(idx)
	if err != nil {
		p.fail("Error selecting animal", err)
		return true
	}
	fmt.Fprintf(p.out, "\nCare Records for '%s':\n", a.Name)
	rows := [][]string{{"When", "Type", "Details"}}
	for rec := range mgr.Care.RecordsFor(a.ID) {
		rows = append(rows, []string{rec.At.Format(time.DateTime), string(rec.Kind), rec.Details()})
	}
	if len(rows) == 1 {
		fmt.Fprintln(p.out, "No care records.")
		return true
	}
	p.table(rows)
	return true
}
