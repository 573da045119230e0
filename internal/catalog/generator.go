package catalog

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"
)

var productNamesByCategory = map[string][]string{
	"Men's Clothing":        {"Classic Denim Jacket", "Slim Fit Formal Shirt", "Graphic Print T-Shirt", "Cotton Polo Shirt", "Hooded Sweatshirt", "Chino Trousers", "Cargo Joggers", "Woolen Overcoat", "Linen Kurta", "Bomber Jacket", "Sports Shorts", "Ethnic Nehru Jacket", "Printed Casual Shirt", "Sleeveless Gym Tank", "Cotton Boxer Pack"},
	"Women's Clothing":      {"A-Line Floral Dress", "High-Waist Jeans", "Ruffle Blouse", "Crop Top Set", "Ethnic Anarkali Kurta", "Winter Trench Coat", "Sports Leggings", "Lace Party Gown", "Tie-Dye Co-ord Set", "Silk Saree", "Denim Skirt", "Sleeveless Maxi Dress", "Velvet Blazer", "Chikankari Kurti", "Sequin Bodycon Dress"},
	"Electronics":           {"Smart 4K LED TV", "Wireless Noise-Canceling Headphones", "Android Smartwatch", "Bluetooth Soundbar", "DSLR Camera (Canon 200D)", "iPad Air (5th Gen)", "MacBook Air M2", "Portable Bluetooth Speaker", "Fast Charging Power Bank (20,000mAh)", "Wireless Gaming Mouse", "Mechanical RGB Keyboard", "Alexa Smart Speaker", "Dual Port Wall Charger", "256GB Flash Drive", "Webcam with Mic"},
	"Smartphones & Tablets": {"iPhone 15 Pro", "Samsung Galaxy S24 Ultra", "OnePlus 12", "Xiaomi 13 Pro", "Google Pixel 8", "iPad Mini (6th Gen)", "Realme Pad X", "Lenovo Yoga Tablet", "Motorola Edge+", "Oppo Reno10", "Vivo V30 Pro", "iPhone SE (2024)", "Samsung Galaxy Tab S9", "OnePlus Pad", "Nokia G42 5G"},
	"Footwear":              {"Nike Running Shoes", "Adidas White Sneakers", "Leather Loafers", "Hiking Boots", "Formal Oxford Shoes", "Canvas Slip-Ons", "Puma Training Shoes", "Transparent Block Heels", "Kolhapuri Sandals", "Ankle-Length Boots", "Flat Ballerinas", "Crocs Unisex Clogs", "Wedge Heels", "Sports Sandals", "Slippers with Arch Support"},
	"Home Appliances":       {"LG Front Load Washing Machine", "Samsung 2-Ton AC", "Philips Air Fryer", "Prestige Induction Cooktop", "Havells Electric Kettle", "IFB Microwave Oven", "Bosch Dishwasher", "Dyson Cordless Vacuum", "Instant Water Heater", "Mixer Grinder (750W)", "Air Purifier", "Refrigerator (Double Door)", "Ceiling Fan with Remote", "Sandwich Toaster", "Smart Rice Cooker"},
	"Beauty & Grooming":     {"Maybelline Foundation Kit", "Lakmé Lipstick Pack", "Nykaa Eyeshadow Palette", "Philips Beard Trimmer", "Braun Hair Straightener", "Nivea Men's Grooming Kit", "L'Oréal Face Serum", "Mamaearth Face Wash", "Vega Nail Art Kit", "Gillette Razor Combo", "Fragrance Set (Unisex)", "Cetaphil Moisturizer", "Himalaya Anti-Hairfall Oil", "Face Roller + Gua Sha Set", "Bath & Body Works Candle"},
	"Accessories":           {"Smart Wallet", "Ray-Ban Aviators", "Analog Luxury Watch", "Minimalist Bracelet Set", "Laptop Backpack", "Leather Sling Bag", "Fashion Choker", "Phone Grip Ring", "Belt Combo (2-Pack)", "Beanie Cap (Unisex)", "Travel Organizer", "RFID Passport Holder", "Statement Earrings", "Clip-on Ties", "Designer Brooch"},
	"Books":                 {"Atomic Habits by James Clear", "Ikigai by Francesc Miralles", "The Psychology of Money", "Wings of Fire by A.P.J Abdul Kalam", "Sapiens by Yuval Noah Harari", "Rich Dad Poor Dad", "The Subtle Art of Not Giving a F*ck", "Think and Grow Rich", "You Can Win", "The Alchemist by Paulo Coelho", "Zero to One by Peter Thiel", "Harry Potter Box Set", "1984 by George Orwell", "The Power of Now", "Do Epic Sh*t by Ankur Warikoo"},
	"Furniture":             {"Modular Sofa Set", "Queen Size Bed with Storage", "Wall-Mounted Bookshelf", "Office Ergonomic Chair", "Foldable Study Table", "Coffee Table (Glass Top)", "Bean Bag XXL", "Bedside Nightstand", "Wooden Dining Set (4-Seater)", "Shoe Rack with Mirror", "TV Entertainment Unit", "Recliner Chair", "Space-Saving Wardrobe", "Wall-Mounted Folding Desk", "Kitchen Trolley Cart"},
	"Kids & Toys":           {"LEGO Classic Building Set", "Remote Control Car", "Barbie Dreamhouse", "Wooden Puzzle Game", "Drawing Kit", "Magnetic Blocks Set", "Nerf Elite Blaster", "Play-Doh Activity Box", "Toy Kitchen Set", "Glow-in-the-Dark Stickers", "Educational Laptop Toy", "Soft Plush Animals", "Tricycle for Toddlers", "Doctor Play Set", "Alphabet Learning Mat"},
	"Sports & Fitness":      {"Home Gym Kit", "Yoga Mat (Anti-Slip)", "Dumbbell Pair (5kg)", "Resistance Band Set", "Cricket Bat (English Willow)", "Bicycle Helmet", "Gym Duffle Bag", "Badminton Racket Set", "Protein Shaker Bottle", "Skipping Rope (Adjustable)", "Fitness Smart Band", "Pull-Up Bar for Door", "Football (FIFA Approved)", "Table Tennis Set", "Volleyball Net Kit"},
	"Kitchen & Dining":      {"Ceramic Dinner Set (16 pcs)", "Non-Stick Cookware Set", "Spice Rack Organizer", "Steel Tiffin Box Set", "Airtight Storage Jars", "Vegetable Chopper", "Glass Water Bottles", "Bamboo Cutting Board", "Stainless Steel Kadai", "Copper Serving Bowls", "Ice Cream Scoop Set", "Reusable Silicone Lids", "Mini Electric Chopper", "Kitchen Apron Set", "Dessert Bowl Pack"},
	"Travel & Outdoors":     {"Waterproof Travel Backpack", "20 Cabin Trolley", "Neck Pillow with Eye Mask", "Foldable Camping Tent", "Travel Size Toiletry Set", "Solar Charger Bank", "TSA Lock Set", "Portable Hammock", "Packing Cubes (Set of 6)", "Hiking Shoes", "Foldable Umbrella", "Reusable Water Bottle", "Compact Travel Blanket", "Trekking Pole Set", "Dry Bag (Kayaking/Boating)"},
	"Stationery & Art":      {"40-Piece Sketch Pen Set", "Premium Spiral Notebook", "Acrylic Paint Set", "Watercolor Journal Pad", "Calligraphy Pen Kit", "Sticky Notes Combo", "Desk Organizer Tray", "Highlighter Marker Set", "Bullet Journal Pack", "Ruler, Compass & Geometry Kit", "Artist Canvas Boards", "Fine Tip Brush Set", "Refillable Gel Pens", "Clip File Folders", "Washi Tape Set (10 Rolls)"},
}

var variantCategories = map[string]struct{}{
	"Men's Clothing":   {},
	"Women's Clothing": {},
	"Footwear":         {},
}

var (
	productImages = []string{"/images/product-1.jpg", "/images/product-2.jpg", "/images/product-3.jpg", "/images/product-4.jpg", "/images/product-5.jpg", "/images/product-6.jpg", "/images/product-7.jpg", "/images/product-8.jpg"}

	loremText = "Discover the premium quality and unique design of this product. Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."

	reviewerNames = []string{"Aarav Sharma", "Vivaan Patel", "Aditya Singh", "Vihaan Kumar", "Arjun Gupta", "Sai Reddy", "Reyansh Mishra", "Krishna Verma", "Ishaan Yadav", "Rudra Ali", "Diya Sharma", "Saanvi Patel", "Anya Singh", "Myra Kumar", "Aarohi Gupta", "Ananya Reddy", "Pari Mishra", "Ishani Verma", "Anika Yadav", "Navya Ali"}

	reviewTexts = []string{"Excellent quality, exceeded my expectations! Value for money.", "Good product, works as described. Fast delivery from PremiumStore.", "Decent item, but the color was slightly different. Okay overall.", "Not what I expected, packaging was damaged. Returned it.", "Amazing! Highly recommended. Looks exactly like the picture.", "Super fast delivery, well packaged. Genuine product.", "Looks great, functions perfectly. Happy with the purchase.", "Very useful, makes daily tasks easier. Worth buying.", "Average quality for the price. Might not last long.", "Simply superb! Best purchase this year.", "Build quality is average, but features are good.", "Received in Mumbai quickly. Good service.", "Perfect fit and color! Loved it.", "Battery life could be better, but good otherwise."}

	allSizes  = []string{"S", "M", "L", "XL"}
	allColors = []string{"Red", "Blue", "Black", "White", "Grey", "Green", "Yellow", "Pink"}
)

// Generate builds the full mock catalog. The shape is deterministic
// (same categories, same names, sequential ids from 1) while prices,
// stock, and ratings are randomized within category bands. A non-zero
// seed makes the whole catalog reproducible.
func Generate(seed int64) []*Product {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	categories := make([]string, 0, len(productNamesByCategory))
	for category := range productNamesByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var products []*Product
	id := 1
	for _, category := range categories {
		for _, name := range productNamesByCategory[category] {
			products = append(products, generateProduct(rng, id, category, name))
			id++
		}
	}

	applyDealOfTheDay(products)
	return products
}

func generateProduct(rng *rand.Rand, id int, category, name string) *Product {
	price := generatePrice(rng, category, name)

	var oldPrice *int64
	if rng.Float64() > 0.8 {
		v := int64(math.Round(float64(price) * (1 + rng.Float64()*0.4 + 0.15)))
		oldPrice = &v
	}

	rating := math.Round((rng.Float64()*1.8+3.2)*10) / 10
	reviewCount := rng.Intn(250) + 5

	stock := 0
	if rng.Float64() > 0.1 {
		stock = rng.Intn(80) + 5
	}

	_, variantCategory := variantCategories[category]
	var options *Options
	if variantCategory && rng.Float64() > 0.3 {
		options = generateOptions(rng)
	}

	imageCount := rng.Intn(3) + 2
	images := make([]string, 0, imageCount)
	for i := 0; i < imageCount; i++ {
		images = append(images, imagePath(id*3+i))
	}

	descLen := rng.Intn(120) + 100
	if descLen > len(loremText) {
		descLen = len(loremText)
	}

	product := &Product{
		ID:          id,
		SKU:         generateSKU(category, id),
		Name:        name,
		Category:    category,
		Price:       price,
		OldPrice:    oldPrice,
		Description: fmt.Sprintf("Experience the best with the %s. %s Available now at PremiumStore with fast shipping across India.", name, loremText[:descLen]),
		Images:      images,
		Rating:      rating,
		ReviewCount: reviewCount,
		Stock:       stock,
		Tags:        generateTags(category, name),
		WeightKg:    math.Round((rng.Float64()*2+0.1)*100) / 100,
		Dimensions: Dimensions{
			Length: math.Round((rng.Float64()*30+5)*10) / 10,
			Width:  math.Round((rng.Float64()*20+5)*10) / 10,
			Height: math.Round((rng.Float64()*10+2)*10) / 10,
		},
		Options:   options,
		Reviews:   generateReviews(rng, rating, reviewCount),
		Questions: generateQuestions(rng, name, stock, options != nil),
	}
	return product
}

func generatePrice(rng *rand.Rand, category, name string) int64 {
	basePrice := 500.0
	multiplier := 1.0
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "pro"), strings.Contains(lower, "ultra"), strings.Contains(lower, "luxury"), strings.Contains(lower, "macbook"), strings.Contains(lower, "iphone 1"):
		multiplier = 3.5
	case strings.Contains(lower, "air"), strings.Contains(lower, "galaxy s"), strings.Contains(lower, "pixel"):
		multiplier = 2.5
	case strings.Contains(lower, "mini"), strings.Contains(lower, "se"), strings.Contains(lower, "lite"), strings.Contains(lower, "pad x"):
		multiplier = 0.8
	}
	if strings.Contains(lower, "set") || strings.Contains(lower, "kit") || strings.Contains(lower, "pack") || strings.Contains(lower, "combo") {
		multiplier *= 1.8
	}

	switch category {
	case "Electronics":
		basePrice = 9000
	case "Smartphones & Tablets":
		basePrice = 20000
	case "Home Appliances":
		basePrice = 7000
	case "Furniture":
		basePrice = 5000
	case "Men's Clothing", "Women's Clothing":
		basePrice = 800
	case "Footwear":
		basePrice = 1200
	case "Beauty & Grooming":
		basePrice = 400
	case "Accessories":
		basePrice = 500
	case "Books":
		basePrice = 300
	case "Kids & Toys":
		basePrice = 450
	case "Sports & Fitness":
		basePrice = 600
	case "Kitchen & Dining":
		basePrice = 550
	case "Travel & Outdoors":
		basePrice = 900
	case "Stationery & Art":
		basePrice = 200
	}

	randomFactor := rng.Float64()*1.2 + 0.6
	price := basePrice * randomFactor * multiplier

	switch {
	case category == "Smartphones & Tablets" || strings.Contains(lower, "macbook"):
		price = clampFloat(price, 8000, 190000)
	case category == "Electronics" || category == "Home Appliances":
		price = clampFloat(price, 500, 150000)
	case category == "Furniture":
		price = clampFloat(price, 1000, 50000)
	default:
		price = clampFloat(price, 150, 20000)
	}

	return int64(math.Round(price))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func generateSKU(category string, id int) string {
	prefix := strings.ToUpper(category)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s%05d", prefix, id)
}

func generateTags(category, name string) []string {
	tags := []string{strings.ReplaceAll(category, "&", "and")}
	lower := strings.ToLower(name)

	addIf := func(cond bool, values ...string) {
		if cond {
			tags = append(tags, values...)
		}
	}
	has := func(subs ...string) bool {
		for _, sub := range subs {
			if strings.Contains(lower, sub) {
				return true
			}
		}
		return false
	}

	addIf(has("shirt", "blouse", "top"), "Topwear")
	addIf(has("t-shirt", "casual"), "Casual")
	addIf(has("jacket", "coat", "blazer"), "Outerwear")
	addIf(has("dress", "gown", "kurti", "saree"), "Womenswear")
	addIf(has("jeans", "trousers", "joggers", "leggings", "skirt"), "Bottomwear")
	addIf(has("ethnic", "kurta", "saree", "nehru"), "Traditional Wear", "Indian Wear")
	addIf(has("smart", "digital", "led", "alexa"), "Tech", "Gadget")
	addIf(has("wireless"), "Wireless")
	addIf(has("bluetooth"), "Bluetooth")
	addIf(has("running", "training", "sports", "gym", "fitness", "yoga"), "Activewear", "Sports")
	addIf(has("leather"), "Leather Goods")
	addIf(has("travel", "backpack"), "Travel Gear")
	addIf(has("home", "decor"), "Home")
	addIf(has("kitchen", "dining"), "Kitchen")
	addIf(has("kids", "toy", "barbie", "lego"), "Kids")
	addIf(has("art", "stationery", "book"), "Creative")

	seen := make(map[string]struct{}, len(tags))
	unique := tags[:0]
	for _, tag := range tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}
	return unique
}

func generateOptions(rng *rand.Rand) *Options {
	sizes := make([]string, 0, len(allSizes))
	for _, size := range allSizes {
		if rng.Float64() > 0.2 {
			sizes = append(sizes, size)
		}
	}

	shuffled := make([]string, len(allColors))
	copy(shuffled, allColors)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	colors := shuffled[:rng.Intn(4)+2]

	return &Options{Sizes: sizes, Colors: colors}
}

func generateReviews(rng *rand.Rand, rating float64, reviewCount int) []Review {
	count := reviewCount
	if count > 8 {
		count = 8
	}
	reviews := make([]Review, 0, count)
	for i := 0; i < count; i++ {
		score := int(math.Round(rating + rng.Float64()*2.5 - 1.25))
		if score < 1 {
			score = 1
		}
		if score > 5 {
			score = 5
		}
		daysAgo := rng.Intn(60)
		reviews = append(reviews, Review{
			Reviewer: reviewerNames[rng.Intn(len(reviewerNames))],
			Rating:   score,
			Text:     reviewTexts[rng.Intn(len(reviewTexts))],
			Date:     time.Now().AddDate(0, 0, -daysAgo).Format("2006-01-02"),
		})
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].Rating != reviews[j].Rating {
			return reviews[i].Rating > reviews[j].Rating
		}
		return reviews[i].Date > reviews[j].Date
	})
	return reviews
}

func generateQuestions(rng *rand.Rand, name string, stock int, hasVariants bool) []Question {
	questions := []Question{{
		Question: "Is Cash on Delivery (COD) available for this item in Pune?",
		Answer:   "Yes, COD is available for most locations in Pune for this item. Please check availability at checkout using your pincode.",
		Date:     "2024-05-10",
	}}
	if stock > 0 && stock < 10 {
		questions = append(questions, Question{
			Question: "Only few left! When will this be back in full stock?",
			Answer:   "We expect a larger restock within the next 2-3 weeks. You can add it to your wishlist to be notified.",
			Date:     "2024-05-15",
		})
	}
	if hasVariants && rng.Float64() > 0.5 {
		questions = append(questions, Question{
			Question: fmt.Sprintf("Is the %s available in size XXL or color Orange?", name),
			Answer:   "Currently, this product is available in the sizes and colors listed on the page. We update our inventory regularly!",
			Date:     "2024-04-28",
		})
	}
	return questions
}

func imagePath(index int) string {
	hash := (index*13 + 7) % len(productImages)
	return productImages[hash]
}

// applyDealOfTheDay reprices the highlighted deal product. Falls back
// to the first well-rated in-stock electronics item at 30% off when
// the named product is missing.
func applyDealOfTheDay(products []*Product) {
	for _, product := range products {
		if product.Name == "Android Smartwatch" {
			if product.OldPrice == nil {
				old := int64(4999)
				product.OldPrice = &old
			}
			product.Price = 2499
			product.Description = fmt.Sprintf("Limited Time Deal! Get the feature-packed %s with health tracking, long battery life, and vibrant AMOLED display at an unbeatable price. Track your steps, heart rate, sleep, and more. Compatible with Android & iOS. Ends soon!", product.Name)
			product.Tags = append(product.Tags, "Deal of the Day", "Limited Time Offer", "Smartwatch", "Fitness Tracker")
			return
		}
	}

	for _, product := range products {
		if product.Category == "Electronics" && product.Rating >= 4.0 && product.Stock > 0 {
			old := product.Price
			product.OldPrice = &old
			product.Price = int64(math.Round(float64(product.Price) * 0.7))
			product.Tags = append(product.Tags, "Deal of the Day", "Special Offer")
			product.Description = "Special Offer! " + product.Description
			return
		}
	}
}
